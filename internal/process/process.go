// Package process terminates browser process trees left behind when a
// graceful browser close fails.
package process

import "errors"

// ErrInvalidPID is returned for PIDs that would address the caller's own
// process group or every process.
var ErrInvalidPID = errors.New("invalid pid")

func checkPID(pid int) error {
	if pid <= 1 {
		return ErrInvalidPID
	}
	return nil
}
