//go:build windows

package platform

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// WindowsRegistryProber checks that a key exists by opening it under
// HKEY_LOCAL_MACHINE and, on success, returns the key path exactly as
// the caller passed it. It does not read back the key's kernel object
// name, so a redirected key (for example under \REGISTRY\USER) is never
// reported.
type WindowsRegistryProber struct{}

func newRegistryProber() RegistryProber { return WindowsRegistryProber{} }

// CanonicalPath implements RegistryProber.
func (WindowsRegistryProber) CanonicalPath(ctx context.Context, key string) (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("platform: open registry key %q: %w", key, err)
	}
	defer k.Close()
	return key, nil
}
