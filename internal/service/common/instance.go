//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another release build owns the staging root.
var ErrAlreadyRunning = errors.New("another release build is already running")

// commLength is the kernel limit on the executable name reported by /proc.
const commLength = 15

// processLister is swapped in tests.
//
//nolint:gochecknoglobals // Test seam for the process table.
var processLister = ps.Processes

// EnsureSingleInstance fails with ErrAlreadyRunning when a process with the
// same executable name as this one, other than this one, is running.
func EnsureSingleInstance() error {
	name := filepath.Base(os.Args[0])

	running, err := OtherInstanceRunning(name)
	if err != nil {
		return err
	}

	if running {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}

	return nil
}

// OtherInstanceRunning reports whether a process named name, other than the
// current one, is present in the process table.
func OtherInstanceRunning(name string) (bool, error) {
	processList, err := processLister()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if sameExecutable(process.Executable(), name) {
			return true, nil
		}
	}

	return false, nil
}

// sameExecutable compares names, accounting for truncation to commLength.
func sameExecutable(listed, name string) bool {
	if listed == name {
		return true
	}

	return len(listed) == commLength && len(name) > commLength && strings.HasPrefix(name, listed)
}
