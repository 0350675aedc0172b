//go:build !windows

package platform

import (
	"context"
	"errors"
)

var errRegistryUnsupported = errors.New("platform: registry probe not available on this build")

// UnsupportedRegistryProber is used on non-Windows builds, where the
// registry does not exist.
type UnsupportedRegistryProber struct{}

func newRegistryProber() RegistryProber { return UnsupportedRegistryProber{} }

// CanonicalPath implements RegistryProber.
func (UnsupportedRegistryProber) CanonicalPath(ctx context.Context, key string) (string, error) {
	return "", errRegistryUnsupported
}
