// Package directio opens the disk store's backing file. On Linux and
// Darwin it also takes an exclusive advisory lock on the file; no flag
// that bypasses the OS page cache is set on any platform.
//
// Adapted from the teacher's internal/directio and internal/storage's
// golang.org/x/sys/unix-based open path; trimmed to just the open call since
// this repo's page layer has no zero-copy/alignment requirement (fixed-size
// pages are always read into a caller-owned buffer, never cast in place).
package directio

import "os"

// OpenFile opens name with flag/perm. On Linux and Darwin it then takes a
// non-blocking exclusive flock on the file and fails if another holder
// already has it. On other platforms it behaves exactly like os.OpenFile.
func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return openFile(name, flag, perm)
}
