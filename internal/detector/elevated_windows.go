//go:build windows

package detector

import "golang.org/x/sys/windows"

// isElevated reports whether the current process token has administrator
// privileges, via the standard open-token/GetTokenInformation pattern.
func isElevated() bool {
	token := windows.GetCurrentProcessToken()
	return token.IsElevated()
}
