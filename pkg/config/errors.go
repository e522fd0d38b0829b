package config

import "errors"

// ErrInvalidConfig is returned by Validate for everything except the alert
// thresholds, which are reported with alert.ErrInvalidPolicy.
var ErrInvalidConfig = errors.New("invalid config")
