// Package config loads the server, database, auth, study engine, translation
// and event settings. Values come from config.yaml (or an explicit file),
// PALABRAS_* environment variables and a local .env file, in increasing order
// of precedence, and are checked with validator struct tags before use.
package config
