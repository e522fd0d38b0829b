package hack

import _ "embed"

// SystemdUnitTemplate is the systemd user unit installed by `lowbatt install`.
// /path/to/lowbatt and /presenter/ are replaced at install time.
//
//go:embed lowbatt.service
var SystemdUnitTemplate string
