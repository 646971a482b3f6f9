package probes

import (
	"os"
	"strings"
)

// CommandRunner matches the engine's runner so probes can share it and
// tests can fake tool output.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// avProcessPatterns are process names indicating a third-party
// endpoint-protection product.
var avProcessPatterns = []string{
	"Sophos", "Malwarebytes", "McAfee", "Symantec", "Norton", "CrowdStrike",
	"SentinelOne", "Defender", "ESET", "Avast", "AVG",
}

// xprotectPlists are candidate Info.plist locations for the XProtect
// bundle, oldest layout first.
var xprotectPlists = []struct {
	plist  string
	domain string
}{
	{
		"/System/Library/CoreServices/XProtect.bundle/Contents/Info.plist",
		"/System/Library/CoreServices/XProtect.bundle/Contents/Info",
	},
	{
		"/Library/Apple/System/Library/CoreServices/XProtect.app/Contents/Info.plist",
		"/Library/Apple/System/Library/CoreServices/XProtect.app/Contents/Info",
	},
}

// DarwinProber probes macOS security posture through system tools.
type DarwinProber struct {
	runner CommandRunner
}

func NewDarwinProber(runner CommandRunner) DarwinProber {
	return DarwinProber{runner: runner}
}

// capture combines stdout and stderr the way the platform tools expect
// to be read: several of them print status lines to stderr.
func (p DarwinProber) capture(name string, args ...string) string {
	stdout, stderr, _, err := p.runner.Run(name, args...)
	combined := string(stdout)
	if trimmed := strings.TrimSpace(string(stderr)); trimmed != "" {
		if combined != "" {
			combined += "\n"
		}
		combined += trimmed
	}
	if combined == "" && err != nil {
		combined = err.Error()
	}
	return combined
}

func (p DarwinProber) Updates() UpdatesStatus {
	out := p.capture("/usr/sbin/softwareupdate", "-l", "--no-scan")
	pending := 0
	if !strings.Contains(out, "No new software available.") {
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "*") || strings.Contains(line, "Label:") {
				pending++
			}
		}
	}
	return UpdatesStatus{Supported: true, Pending: pending, Raw: out}
}

func (p DarwinProber) Firewall() FirewallStatus {
	out := p.capture("/usr/libexec/ApplicationFirewall/socketfilterfw", "--getglobalstate")
	state := StateUnknown
	switch {
	case strings.Contains(out, "enabled"), strings.Contains(out, "State = 1"):
		state = StateEnabled
	case strings.Contains(out, "disabled"), strings.Contains(out, "State = 0"):
		state = StateDisabled
	}
	return FirewallStatus{Supported: true, State: state, Raw: out}
}

func (p DarwinProber) Antivirus() AntivirusStatus {
	spctlOut := p.capture("/usr/sbin/spctl", "--status")
	gatekeeper := StateUnknown
	switch {
	case strings.Contains(strings.ToLower(spctlOut), "assessments enabled"):
		gatekeeper = StateEnabled
	case strings.Contains(strings.ToLower(spctlOut), "assessments disabled"):
		gatekeeper = StateDisabled
	}

	psOut := p.capture("/bin/ps", "-A", "-o", "comm")
	products := make([]string, 0)
	for _, pattern := range avProcessPatterns {
		if strings.Contains(psOut, pattern) {
			products = append(products, pattern)
		}
	}

	version := ""
	for _, candidate := range xprotectPlists {
		if _, err := os.Stat(candidate.plist); err != nil {
			continue
		}
		out := strings.TrimSpace(p.capture("/usr/bin/defaults", "read", candidate.domain, "CFBundleShortVersionString"))
		if out != "" {
			version = out
			break
		}
	}

	raw := "spctl: " + strings.TrimSpace(spctlOut) + "\nprocesses: " + strings.Join(products, ", ")
	return AntivirusStatus{
		Supported:       true,
		Gatekeeper:      gatekeeper,
		ThirdParty:      len(products) > 0,
		Products:        products,
		XProtectVersion: version,
		Raw:             raw,
	}
}

func (p DarwinProber) DiskEncryption() DiskEncryptionStatus {
	out := p.capture("/usr/bin/fdesetup", "status")
	lower := strings.ToLower(out)
	state := StateUnknown
	switch {
	case strings.Contains(lower, "filevault is on"):
		state = StateEnabled
	case strings.Contains(lower, "filevault is off"):
		state = StateDisabled
	}
	return DiskEncryptionStatus{Supported: true, State: state, Raw: out}
}

func (p DarwinProber) Backup() BackupStatus {
	statusOut := p.capture("/usr/bin/tmutil", "status")
	running := strings.Contains(statusOut, "Running = 1")

	latestOut := p.capture("/usr/bin/tmutil", "latestbackup")
	latest := strings.TrimSpace(latestOut)
	configured := latest != "" && !strings.Contains(latest, "(null)")
	if !configured {
		latest = ""
	}

	raw := "status: " + strings.TrimSpace(statusOut) + "\nlatest: " + strings.TrimSpace(latestOut)
	return BackupStatus{
		Supported:    true,
		Configured:   configured,
		Running:      running,
		LatestBackup: latest,
		Raw:          raw,
	}
}

func (p DarwinProber) PlatformIntegrity() IntegrityStatus {
	out := p.capture("/usr/bin/csrutil", "status")
	lower := strings.ToLower(out)
	state := StateUnknown
	switch {
	case strings.Contains(lower, "disabled"):
		state = StateDisabled
	case strings.Contains(lower, "enabled"):
		state = StateEnabled
	}
	return IntegrityStatus{Supported: true, State: state, Raw: out}
}
