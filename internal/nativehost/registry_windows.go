//go:build windows

package nativehost

import "golang.org/x/sys/windows/registry"

// registerWindowsManifest writes
// HKLM\SOFTWARE\Google\Chrome\NativeMessagingHosts\com.integritywatch.host
// pointing at manifestPath, per spec §6.
func registerWindowsManifest(manifestPath string) error {
	key, _, err := registry.CreateKey(registry.LOCAL_MACHINE,
		`SOFTWARE\Google\Chrome\NativeMessagingHosts\`+HostName, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()
	return key.SetStringValue("", manifestPath)
}
