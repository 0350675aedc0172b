// Package detector defines the common contract every VM/sandbox,
// remote-access, and browser-violation detector satisfies, plus the
// safe wrapper that enforces platform/privilege gating and converts
// panics into TechniqueResults.
package detector

import (
	"context"
	"fmt"
	"runtime"
	"slices"
)

// Tier classifies the severity of a finding. The VM and remote-access
// engines call this "tier"; the browser engine calls the same field
// "severity" — both are this type.
type Tier string

const (
	TierCritical Tier = "CRITICAL"
	TierHigh     Tier = "HIGH"
	TierMedium   Tier = "MEDIUM"
	TierLow      Tier = "LOW"
	TierUnknown  Tier = "UNKNOWN"
)

// TechniqueResult is the outcome of a single detector's scan or monitor
// pass. A non-empty Error means Detected is always false and the result
// is excluded from verdict counters.
type TechniqueResult struct {
	Name     string         `json:"name"`
	Detected bool           `json:"detected"`
	Tier     Tier           `json:"tier,omitempty"`
	Details  string         `json:"details,omitempty"`
	Count    int            `json:"count,omitempty"`
	Error    string         `json:"error,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Failed reports whether this result carries an error and is therefore
// excluded from fusion counters.
func (r TechniqueResult) Failed() bool {
	return r.Error != ""
}

// Detector is the common contract every detection technique satisfies.
type Detector interface {
	Name() string
	// SupportedPlatforms returns GOOS values this detector runs on;
	// an empty slice means "all platforms".
	SupportedPlatforms() []string
	RequiresAdmin() bool
	Scan(ctx context.Context) TechniqueResult
}

// Monitorable is satisfied by detectors with their own monitor-mode
// scan. Detectors that don't implement it fall back to Scan.
type Monitorable interface {
	Monitor(ctx context.Context) TechniqueResult
}

const (
	errPlatformNotSupported = "Platform not supported"
	errInsufficientPerms    = "Insufficient permissions"
)

// SafeScan runs d.Scan guarded by platform/privilege gating and panic
// recovery, per spec §4.1 and the testable property in §8 item 2.
func SafeScan(ctx context.Context, d Detector) (result TechniqueResult) {
	if msg, ok := gate(d); !ok {
		return TechniqueResult{Name: d.Name(), Detected: false, Error: msg}
	}
	defer func() {
		if rec := recover(); rec != nil {
			result = TechniqueResult{Name: d.Name(), Detected: false, Error: fmt.Sprintf("panic: %v", rec)}
		}
	}()
	return d.Scan(ctx)
}

// SafeMonitor is SafeScan's monitor-mode counterpart: it calls d.Monitor
// when d implements Monitorable, otherwise it defers to Scan.
func SafeMonitor(ctx context.Context, d Detector) (result TechniqueResult) {
	if msg, ok := gate(d); !ok {
		return TechniqueResult{Name: d.Name(), Detected: false, Error: msg}
	}
	defer func() {
		if rec := recover(); rec != nil {
			result = TechniqueResult{Name: d.Name(), Detected: false, Error: fmt.Sprintf("panic: %v", rec)}
		}
	}()
	if m, ok := d.(Monitorable); ok {
		return m.Monitor(ctx)
	}
	return d.Scan(ctx)
}

func gate(d Detector) (string, bool) {
	platforms := d.SupportedPlatforms()
	if len(platforms) > 0 && !slices.Contains(platforms, runtime.GOOS) {
		return errPlatformNotSupported, false
	}
	if d.RequiresAdmin() && !isElevated() {
		return errInsufficientPerms, false
	}
	return "", true
}
