package remoteengine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// threat is one matched process/connection, before dedup and tier
// resolution into a single TechniqueResult.
type threat struct {
	name   string
	tier   detector.Tier
	reason string
}

// ProcessDetector enumerates running processes and applies spec §4.3's
// three-check cascade: name match against the category blocklist, then
// TCP port match for processes not caught by name, then reverse DNS for
// connections neither check explains.
type ProcessDetector struct {
	Processes            platform.ProcessProber
	Connections          platform.ConnectionProber
	ReverseDNS           platform.ReverseDNSProber
	AllowConferenceTools bool
}

func (d ProcessDetector) Name() string                { return "Remote Access Process Detection" }
func (d ProcessDetector) SupportedPlatforms() []string { return nil }
func (d ProcessDetector) RequiresAdmin() bool          { return false }

func (d ProcessDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	procs, err := d.Processes.Processes(ctx)
	if err != nil {
		return detector.TechniqueResult{Name: name, Detected: false, Error: err.Error()}
	}

	var threats []threat
	matchedPIDs := make(map[int]bool)

	for _, p := range procs {
		lower := strings.ToLower(p.Name)
		if category, ok := processCategory[lower]; ok {
			tier := tierForCategory(category, d.AllowConferenceTools)
			threats = append(threats, threat{
				name:   p.Name,
				tier:   detector.Tier(tier),
				reason: fmt.Sprintf("%s matched category %s", p.Name, category),
			})
			matchedPIDs[p.PID] = true
		}
	}

	if d.Connections != nil {
		for _, p := range procs {
			if matchedPIDs[p.PID] {
				continue
			}
			conns, err := d.Connections.Connections(ctx, p.PID)
			if err != nil {
				continue
			}
			portThreat, found := d.scanConnectionsByPort(p, conns)
			if found {
				threats = append(threats, portThreat)
				continue
			}
			if d.ReverseDNS != nil {
				if dnsThreat, found := d.scanConnectionsByDNS(ctx, p, conns); found {
					threats = append(threats, dnsThreat)
				}
			}
		}
	}

	return buildResult(name, threats)
}

// scanConnectionsByPort implements spec §4.3 item 2: an ESTABLISHED
// connection whose local or remote port is a known remote-access port.
func (d ProcessDetector) scanConnectionsByPort(p platform.ProcessInfo, conns []platform.Connection) (threat, bool) {
	for _, c := range conns {
		if c.State != "ESTABLISHED" {
			continue
		}
		if tool, ok := suspiciousPorts[c.LocalPort]; ok {
			return threat{name: p.Name, tier: detector.TierCritical,
				reason: fmt.Sprintf("Connecting to %s port %d", tool, c.LocalPort)}, true
		}
		if tool, ok := suspiciousPorts[c.RemotePort]; ok {
			return threat{name: p.Name, tier: detector.TierCritical,
				reason: fmt.Sprintf("Connecting to %s port %d", tool, c.RemotePort)}, true
		}
	}
	return threat{}, false
}

// scanConnectionsByDNS implements spec §4.3 item 3: reverse-resolve a
// connection's remote address when its port warrants it and match the
// hostname against a known remote-access provider suffix.
func (d ProcessDetector) scanConnectionsByDNS(ctx context.Context, p platform.ProcessInfo, conns []platform.Connection) (threat, bool) {
	for _, c := range conns {
		if c.State != "ESTABLISHED" || c.RemoteAddr == "" {
			continue
		}
		warrantsLookup := fallbackDNSPorts[c.RemotePort] || !commonLegitimatePorts[c.RemotePort]
		if !warrantsLookup {
			continue
		}
		host, err := d.ReverseDNS.Lookup(ctx, c.RemoteAddr)
		if err != nil || host == "" {
			continue
		}
		lower := strings.ToLower(host)
		for _, suffix := range knownProviderSuffixes {
			if strings.HasSuffix(lower, suffix) {
				return threat{name: p.Name, tier: detector.TierCritical,
					reason: fmt.Sprintf("Remote connection resolves to known provider %s", host)}, true
			}
		}
	}
	return threat{}, false
}

// buildResult dedups threats by lowercased name, picks the most severe
// tier present, and renders a details string naming the first three
// unique threats, each with its reason, plus an overflow count.
func buildResult(name string, threats []threat) detector.TechniqueResult {
	if len(threats) == 0 {
		return detector.TechniqueResult{Name: name, Detected: false, Details: "No remote-access tools detected"}
	}

	seen := make(map[string]threat)
	var order []string
	for _, t := range threats {
		key := strings.ToLower(t.name)
		if existing, ok := seen[key]; !ok || severityRank(t.tier) > severityRank(existing.tier) {
			if !ok {
				order = append(order, key)
			}
			seen[key] = t
		}
	}
	sort.Strings(order)

	highest := detector.TierLow
	for _, t := range seen {
		if severityRank(t.tier) > severityRank(highest) {
			highest = t.tier
		}
	}

	names := make([]string, 0, len(order))
	labels := make([]string, 0, len(order))
	for _, key := range order {
		names = append(names, seen[key].name)
		labels = append(labels, fmt.Sprintf("%s (%s)", seen[key].name, seen[key].reason))
	}

	var details string
	if len(labels) <= 3 {
		details = fmt.Sprintf("Detected: %s", strings.Join(labels, ", "))
	} else {
		details = fmt.Sprintf("Detected: %s and %d more", strings.Join(labels[:3], ", "), len(labels)-3)
	}

	return detector.TechniqueResult{
		Name: name, Detected: true, Tier: highest, Details: details,
		Data: map[string]any{"threats": names},
	}
}

func severityRank(t detector.Tier) int {
	switch t {
	case detector.TierCritical:
		return 4
	case detector.TierHigh:
		return 3
	case detector.TierMedium:
		return 2
	case detector.TierLow:
		return 1
	default:
		return 0
	}
}
