package security

import "os"

// EnsureDir creates dir (and parents) with owner-only permissions if it
// does not already exist — used for the runtime directory the coordinator
// and native host share, which holds violation records and commands.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}

// WriteFileSecure writes data to path with owner-only read/write
// permissions, matching the convention used for signing keys and
// daemon state files.
func WriteFileSecure(path string, data []byte) error {
	return os.WriteFile(path, data, 0600)
}
