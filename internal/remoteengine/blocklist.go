package remoteengine

// processCategory classifies a lowercased process name by remote-access
// tool category, per spec §4.3's blocklist table. Category membership
// determines tier: every category is CRITICAL except conference_tools_sharing,
// which is policy-controlled (see tierForCategory).
var processCategory = map[string]string{
	// commercial_tools
	"teamviewer.exe":   "commercial_tools",
	"teamviewer":       "commercial_tools",
	"anydesk.exe":      "commercial_tools",
	"anydesk":          "commercial_tools",
	"logmein.exe":      "commercial_tools",
	"splashtop.exe":    "commercial_tools",
	"supremo.exe":      "commercial_tools",
	"rustdesk.exe":     "commercial_tools",
	"rustdesk":         "commercial_tools",
	"parsecd.exe":      "commercial_tools",
	"gotomypc.exe":     "commercial_tools",

	// vnc_variants
	"vncserver.exe":  "vnc_variants",
	"vncviewer.exe":  "vnc_variants",
	"tightvnc.exe":   "vnc_variants",
	"realvnc.exe":    "vnc_variants",
	"ultravnc.exe":   "vnc_variants",
	"x11vnc":         "vnc_variants",
	"vino-server":    "vnc_variants",

	// windows_native
	"mstsc.exe":        "windows_native",
	"msra.exe":         "windows_native",
	"quickassist.exe":  "windows_native",

	// browser_extensions (helper processes for browser-based remote control)
	"chromoting.exe": "browser_extensions",
	"remotedesktop":  "browser_extensions",

	// admin_tools
	"psexec.exe":   "admin_tools",
	"psexecsvc":    "admin_tools",
	"dameware.exe": "admin_tools",

	// screen_recording
	"obs64.exe":    "screen_recording",
	"obs32.exe":    "screen_recording",
	"obs":          "screen_recording",
	"camtasia.exe": "screen_recording",
	"bandicam.exe": "screen_recording",

	// virtual_camera
	"obs-virtualcam.exe": "virtual_camera",
	"manycam.exe":        "virtual_camera",
	"splitcam.exe":       "virtual_camera",

	// streaming_software
	"xsplit.exe":   "streaming_software",
	"streamlabs.exe": "streaming_software",

	// conference_tools_sharing — policy-controlled, see tierForCategory
	"zoom.exe":        "conference_tools_sharing",
	"zoom":            "conference_tools_sharing",
	"teams.exe":       "conference_tools_sharing",
	"slack.exe":       "conference_tools_sharing",
	"discord.exe":     "conference_tools_sharing",
	"webexmta.exe":    "conference_tools_sharing",
}

// tierForCategory resolves a category to its tier given the
// allow_conference_tools policy flag (spec §4.3).
func tierForCategory(category string, allowConferenceTools bool) string {
	if category == "conference_tools_sharing" {
		if allowConferenceTools {
			return "LOW"
		}
		return "CRITICAL"
	}
	return "CRITICAL"
}

// suspiciousPorts maps a TCP port to the remote-access tool it belongs
// to, per spec §4.3's port table. VNC and RustDesk occupy a range.
var suspiciousPorts = map[int]string{
	3389:  "RDP",
	5900:  "VNC",
	5901:  "VNC",
	5902:  "VNC",
	5903:  "VNC",
	5904:  "VNC",
	5905:  "VNC",
	5938:  "TeamViewer",
	6568:  "AnyDesk",
	7070:  "AnyDesk",
	21116: "RustDesk",
	21117: "RustDesk",
	21118: "RustDesk",
	21119: "RustDesk",
	11011: "Supremo",
	11012: "Supremo",
}

// fallbackDNSPorts are checked by reverse DNS when no process/port match
// fired, per spec §4.3 item 3.
var fallbackDNSPorts = map[int]bool{80: true, 443: true, 8080: true, 8443: true}

// commonLegitimatePorts are excluded from the reverse-DNS fallback check
// unless also in fallbackDNSPorts.
var commonLegitimatePorts = map[int]bool{
	20: true, 21: true, 22: true, 25: true, 53: true, 110: true, 143: true,
	465: true, 587: true, 993: true, 995: true, 3306: true, 5432: true,
}

// knownProviderSuffixes matches a reverse-DNS hostname against known
// remote-access vendor domains, per spec §4.3 item 3.
var knownProviderSuffixes = []string{
	"teamviewer.com",
	"anydesk.com",
	"net.anydesk.com",
	"realvnc.com",
	"tightvnc.com",
	"rustdesk.com",
}
