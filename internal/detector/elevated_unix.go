//go:build !windows

package detector

import "os"

// isElevated reports whether the current process is running as root.
func isElevated() bool {
	return os.Geteuid() == 0
}
