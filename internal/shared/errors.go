package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Backend errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrDecode             = fmt.Errorf("failed to decode response")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Poster and cache errors
	ErrPosterNotFound = fmt.Errorf("poster not found")
	ErrCacheDisabled  = fmt.Errorf("poster cache disabled")

	// Viewer errors
	ErrPageClosed      = fmt.Errorf("page closed")
	ErrSessionNotFound = fmt.Errorf("session not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
