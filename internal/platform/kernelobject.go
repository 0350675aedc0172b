package platform

import (
	"context"
	"os"
)

// StdKernelObjectProber tries to open each candidate path in order and
// reports the first one that succeeds. Opening a device node or named
// pipe is plain I/O on every OS this module targets, so no platform
// split is needed here — only the path lists the VM engine supplies
// differ per OS.
type StdKernelObjectProber struct{}

// Probe implements KernelObjectProber.
func (StdKernelObjectProber) Probe(ctx context.Context, paths []string) (string, bool, error) {
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		default:
		}

		f, err := os.Open(p)
		if err != nil {
			continue
		}
		f.Close()
		return p, true, nil
	}
	return "", false, nil
}
