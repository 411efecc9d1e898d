// Package gemini implements translation.Translator on top of Google's Gemini
// API. It builds a short prompt per term, calls the model with retries and
// exponential backoff for transient errors, and reduces the reply to a
// single candidate string.
package gemini
