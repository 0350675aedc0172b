//go:build windows

package platform

import (
	"context"

	"golang.org/x/sys/windows"
)

// WindowsRemoteSessionProber checks SM_REMOTESESSION via GetSystemMetrics,
// the standard way a Windows process detects it is running inside an RDP
// session rather than on the console.
type WindowsRemoteSessionProber struct{}

func newRemoteSessionProber() RemoteSessionProber { return WindowsRemoteSessionProber{} }

const smRemoteSession = 0x1000

// IsRemoteSession implements RemoteSessionProber.
func (WindowsRemoteSessionProber) IsRemoteSession(ctx context.Context) (bool, error) {
	user32 := windows.NewLazySystemDLL("user32.dll")
	getSystemMetrics := user32.NewProc("GetSystemMetrics")
	ret, _, _ := getSystemMetrics.Call(uintptr(smRemoteSession))
	return ret != 0, nil
}
