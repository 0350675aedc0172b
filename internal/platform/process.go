package platform

import (
	"context"
	"fmt"

	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// GopsutilProcessProber enumerates processes via gopsutil, which wraps
// /proc on Linux, WMI on Windows, and libproc on macOS behind one API —
// a cross-platform alternative to a go-winio/WMI split.
type GopsutilProcessProber struct{}

// Processes implements ProcessProber.
func (GopsutilProcessProber) Processes(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("platform: enumerate processes: %w", err)
	}

	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		path, _ := p.ExeWithContext(ctx)
		out = append(out, ProcessInfo{PID: int(p.Pid), Name: name, Path: path})
	}
	return out, nil
}

// GopsutilConnectionProber lists TCP connections for a pid via gopsutil.
type GopsutilConnectionProber struct{}

// Connections implements ConnectionProber.
func (GopsutilConnectionProber) Connections(ctx context.Context, pid int) ([]Connection, error) {
	conns, err := gopsnet.ConnectionsPidWithContext(ctx, "tcp", int32(pid))
	if err != nil {
		return nil, fmt.Errorf("platform: connections for pid %d: %w", pid, err)
	}

	out := make([]Connection, 0, len(conns))
	for _, c := range conns {
		out = append(out, Connection{
			PID:        pid,
			LocalPort:  int(c.Laddr.Port),
			RemotePort: int(c.Raddr.Port),
			RemoteAddr: c.Raddr.IP,
			State:      c.Status,
		})
	}
	return out, nil
}
