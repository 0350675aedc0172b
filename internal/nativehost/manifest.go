package nativehost

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// HostName is the native-messaging host identifier every browser
// manifest and (on Windows) registry entry uses, per spec §6.
const HostName = "com.integritywatch.host"

// Manifest is the native-messaging host manifest every Chromium-family
// browser reads to learn how to launch the host, per spec §6.
type Manifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Path           string   `json:"path"`
	Type           string   `json:"type"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// browserManifestDirs lists the per-user NativeMessagingHosts directory
// for each Chromium-family browser this tool supports, keyed by a
// human label used in install-step logging.
func browserManifestDirs(home string) map[string]string {
	switch runtime.GOOS {
	case "windows":
		base := filepath.Join(home, "AppData", "Local")
		return map[string]string{
			"Chrome":  filepath.Join(base, "Google", "Chrome", "User Data", "NativeMessagingHosts"),
			"Edge":    filepath.Join(base, "Microsoft", "Edge", "User Data", "NativeMessagingHosts"),
			"Brave":   filepath.Join(base, "BraveSoftware", "Brave-Browser", "User Data", "NativeMessagingHosts"),
			"Chromium": filepath.Join(base, "Chromium", "User Data", "NativeMessagingHosts"),
		}
	case "darwin":
		base := filepath.Join(home, "Library", "Application Support")
		return map[string]string{
			"Chrome":   filepath.Join(base, "Google", "Chrome", "NativeMessagingHosts"),
			"Edge":     filepath.Join(base, "Microsoft Edge", "NativeMessagingHosts"),
			"Brave":    filepath.Join(base, "BraveSoftware", "Brave-Browser", "NativeMessagingHosts"),
			"Chromium": filepath.Join(base, "Chromium", "NativeMessagingHosts"),
		}
	default:
		return map[string]string{
			"Chrome":   filepath.Join(home, ".config", "google-chrome", "NativeMessagingHosts"),
			"Chromium": filepath.Join(home, ".config", "chromium", "NativeMessagingHosts"),
			"Brave":    filepath.Join(home, ".config", "BraveSoftware", "Brave-Browser", "NativeMessagingHosts"),
		}
	}
}

// InstallManifests writes the native-host manifest into every detected
// Chromium-family browser's NativeMessagingHosts directory, per spec
// §6. extensionID is the extension's chrome-extension:// origin ID;
// executablePath is the absolute path to the host binary (or its
// Windows .bat shim). Returns the list of browser labels it wrote to.
func InstallManifests(executablePath, extensionID string) ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("nativehost: resolve home dir: %w", err)
	}

	launchPath := executablePath
	if runtime.GOOS == "windows" {
		shimPath, err := writeWindowsShim(executablePath)
		if err != nil {
			return nil, err
		}
		launchPath = shimPath
	}

	manifest := Manifest{
		Name:           HostName,
		Description:    "IntegrityWatch exam-integrity native messaging host",
		Path:           launchPath,
		Type:           "stdio",
		AllowedOrigins: []string{fmt.Sprintf("chrome-extension://%s/", extensionID)},
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}

	var installed []string
	for browser, dir := range browserManifestDirs(home) {
		if _, err := os.Stat(filepath.Dir(dir)); err != nil {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			continue
		}
		path := filepath.Join(dir, HostName+".json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			continue
		}
		installed = append(installed, browser)
	}

	if runtime.GOOS == "windows" {
		manifestPath := filepath.Join(browserManifestDirs(home)["Chrome"], HostName+".json")
		if err := registerWindowsManifest(manifestPath); err != nil {
			return installed, fmt.Errorf("nativehost: register windows manifest key: %w", err)
		}
	}

	return installed, nil
}

// writeWindowsShim wraps the host executable in a .bat launcher, per
// spec §6: Windows invokes native-messaging hosts through a registered
// command line, and a .bat shim is the simplest stable target for that
// registration to point at.
func writeWindowsShim(executablePath string) (string, error) {
	shimPath := executablePath + ".bat"
	content := fmt.Sprintf("@echo off\r\n\"%s\" host\r\n", executablePath)
	if err := os.WriteFile(shimPath, []byte(content), 0755); err != nil {
		return "", fmt.Errorf("nativehost: write windows shim: %w", err)
	}
	return shimPath, nil
}
