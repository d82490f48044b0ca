// Package common provides shared constants, errors, logging and file
// helpers used throughout the SNX client.
//
//   - Constants: service address, timeouts, file names and UI dimensions
//   - Errors: sentinel errors checked with errors.Is
//   - Logger: leveled logging to stdout and a rotated log file
//   - Utils: config and data directory helpers, atomic file writes
//
// # Usage
//
//	common.LogInfo("Connecting to %s", server)
//
//	if errors.Is(err, common.ErrServiceUnavailable) {
//	    // show "service stopped"
//	}
package common
