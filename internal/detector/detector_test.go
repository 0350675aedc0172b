package detector

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	name      string
	platforms []string
	admin     bool
	scan      func(ctx context.Context) TechniqueResult
	monitor   func(ctx context.Context) TechniqueResult
}

func (s stubDetector) Name() string                { return s.name }
func (s stubDetector) SupportedPlatforms() []string { return s.platforms }
func (s stubDetector) RequiresAdmin() bool          { return s.admin }
func (s stubDetector) Scan(ctx context.Context) TechniqueResult {
	return s.scan(ctx)
}

type monitorableStub struct {
	stubDetector
}

func (s monitorableStub) Monitor(ctx context.Context) TechniqueResult {
	return s.monitor(ctx)
}

func TestSafeScanSkipsUnsupportedPlatform(t *testing.T) {
	other := "plan9"
	if runtime.GOOS == "plan9" {
		other = "aix"
	}
	d := stubDetector{name: "X", platforms: []string{other}}

	result := SafeScan(context.Background(), d)

	require.False(t, result.Detected)
	require.Equal(t, errPlatformNotSupported, result.Error)
}

func TestSafeScanRunsOnSupportedPlatform(t *testing.T) {
	d := stubDetector{
		name:      "X",
		platforms: []string{runtime.GOOS},
		scan: func(ctx context.Context) TechniqueResult {
			return TechniqueResult{Name: "X", Detected: true, Tier: TierHigh}
		},
	}

	result := SafeScan(context.Background(), d)

	require.True(t, result.Detected)
	require.Equal(t, TierHigh, result.Tier)
}

func TestSafeScanRecoversPanic(t *testing.T) {
	d := stubDetector{
		name: "X",
		scan: func(ctx context.Context) TechniqueResult {
			panic("boom")
		},
	}

	result := SafeScan(context.Background(), d)

	require.False(t, result.Detected)
	require.Contains(t, result.Error, "boom")
}

func TestSafeMonitorFallsBackToScan(t *testing.T) {
	d := stubDetector{
		name: "X",
		scan: func(ctx context.Context) TechniqueResult {
			return TechniqueResult{Name: "X", Detected: true}
		},
	}

	result := SafeMonitor(context.Background(), d)

	require.True(t, result.Detected)
}

func TestSafeMonitorUsesMonitorWhenImplemented(t *testing.T) {
	d := monitorableStub{stubDetector{
		name: "X",
		scan: func(ctx context.Context) TechniqueResult {
			return TechniqueResult{Name: "X", Detected: false, Details: "scan"}
		},
		monitor: func(ctx context.Context) TechniqueResult {
			return TechniqueResult{Name: "X", Detected: false, Details: "monitor"}
		},
	}}

	result := SafeMonitor(context.Background(), d)

	require.Equal(t, "monitor", result.Details)
}

func TestFailedExcludesFromCounters(t *testing.T) {
	r := TechniqueResult{Detected: false, Error: "probe failure"}
	require.True(t, r.Failed())

	r2 := TechniqueResult{Detected: true}
	require.False(t, r2.Failed())
}
