package alert

import "errors"

var (
	// ErrInvalidPolicy is returned for misordered or out of range thresholds.
	ErrInvalidPolicy = errors.New("invalid alert policy")

	// ErrSecondaryActionUnavailable is returned when the secondary action is
	// requested while the last decision did not enable it.
	ErrSecondaryActionUnavailable = errors.New("secondary action is not available")

	// ErrActionLaunch is returned when the runner failed to start the command.
	ErrActionLaunch = errors.New("failed to launch secondary action")
)
