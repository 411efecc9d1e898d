// Package redact strips credentials from strings before they are logged.
// Connection strings for Postgres and NATS, bearer tokens, signed JWTs and
// API keys all end up in driver and client error messages.
package redact

import (
	"log/slog"
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	JWTPlaceholder        = "[REDACTED_JWT]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

var rules = []rule{
	// user:password@ in postgres://, nats:// and similar URLs.
	{
		regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^/@\s]+@`),
		"${1}" + CredentialPlaceholder + "@",
	},
	// key=value DSN and query parameters.
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd|api[_-]?key|key|secret|token)=([^&\s'"]+)`),
		"${1}=" + KeyPlaceholder,
	},
	// Authorization headers.
	{
		regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`),
		"Bearer " + KeyPlaceholder,
	},
	// Compact JWS: header.payload.signature.
	{
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		JWTPlaceholder,
	},
	// Google API keys.
	{
		regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{20,}`),
		KeyPlaceholder,
	},
}

// String returns input with every known credential pattern replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.replacement)
	}
	return input
}

// Error redacts err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook that redacts string
// and error attribute values.
func ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); s != "" {
			a.Value = slog.StringValue(String(s))
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			a.Value = slog.StringValue(Error(err))
		}
	}
	return a
}
