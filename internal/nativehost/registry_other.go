//go:build !windows

package nativehost

// registerWindowsManifest is a no-op off Windows; Chromium on Linux/macOS
// discovers native-messaging hosts from the manifest directory alone.
func registerWindowsManifest(manifestPath string) error { return nil }
