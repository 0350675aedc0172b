//go:build !windows

package platform

import (
	"context"
	"os"
)

// UnixRemoteSessionProber treats the presence of SSH_CONNECTION/SSH_TTY
// as a remote session signal, the closest portable equivalent to
// SM_REMOTESESSION outside Windows.
type UnixRemoteSessionProber struct{}

func newRemoteSessionProber() RemoteSessionProber { return UnixRemoteSessionProber{} }

// IsRemoteSession implements RemoteSessionProber.
func (UnixRemoteSessionProber) IsRemoteSession(ctx context.Context) (bool, error) {
	_, viaConn := os.LookupEnv("SSH_CONNECTION")
	_, viaTTY := os.LookupEnv("SSH_TTY")
	return viaConn || viaTTY, nil
}
