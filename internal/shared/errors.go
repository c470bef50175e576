package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Token errors
	ErrNoTokenData   = fmt.Errorf("no token data for user")
	ErrInvalidToken  = fmt.Errorf("invalid or revoked token")
	ErrTokenRevoked  = fmt.Errorf("refresh token revoked")
	ErrRefreshFailed = fmt.Errorf("token refresh failed")

	// API and rendering errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrImageFetch = fmt.Errorf("cover image fetch failed")

	// Input validation errors
	ErrMissingParameter = fmt.Errorf("missing required parameter")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
)
