package auth

import "errors"

// Token errors. The API reports all of them as 401.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")

	// ErrWeakSecret is returned by NewJWTService for secrets under 32 bytes.
	ErrWeakSecret = errors.New("jwt secret must be at least 32 characters")
)
