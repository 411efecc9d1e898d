// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts HTTP to the practice service: learners
// authenticate with their code, then fetch study lists and submit responses.
package api
