//go:build linux || darwin

package directio

import (
	"os"

	"golang.org/x/sys/unix"
)

// openFile opens the store file and takes an exclusive advisory lock so two
// processes never mediate the same on-disk pages through two independent
// buffer pools at once.
func openFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	file, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		return nil, err
	}

	return file, nil
}
