package config

import "errors"

// Validation errors returned by Config.Validate and the setters.
var (
	ErrNoPageURL       = errors.New("no page url: set PAGEURL or pass the URL argument")
	ErrInvalidPageURL  = errors.New("invalid page url: must be an absolute http(s) url")
	ErrNoLoginSelector = errors.New("login selectors missing: LOGIN_SELECTER must be \"<login>,<logged-in>\"")
	ErrInvalidTimeout  = errors.New("invalid timeout: must be positive")
	ErrInvalidDelay    = errors.New("invalid delay: must be non-negative")
)
