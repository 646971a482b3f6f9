// Package probes answers read-only questions about the host's security
// posture. Every probe shells out to a platform tool and pattern-matches
// its textual output; absence of a recognized pattern is reported as
// "unknown", never as "disabled".
package probes

// States reported by pattern-matching probes.
const (
	StateEnabled  = "enabled"
	StateDisabled = "disabled"
	StateUnknown  = "unknown"
)

type UpdatesStatus struct {
	Supported bool   `json:"supported"`
	Pending   int    `json:"pending"`
	Raw       string `json:"raw"`
}

type FirewallStatus struct {
	Supported bool   `json:"supported"`
	State     string `json:"state"`
	Raw       string `json:"raw"`
}

type AntivirusStatus struct {
	Supported       bool     `json:"supported"`
	Gatekeeper      string   `json:"gatekeeper"`
	ThirdParty      bool     `json:"third_party_detected"`
	Products        []string `json:"products"`
	XProtectVersion string   `json:"xprotect_version,omitempty"`
	Raw             string   `json:"raw"`
}

type DiskEncryptionStatus struct {
	Supported bool   `json:"supported"`
	State     string `json:"state"`
	Raw       string `json:"raw"`
}

type BackupStatus struct {
	Supported    bool   `json:"supported"`
	Configured   bool   `json:"configured"`
	Running      bool   `json:"running"`
	LatestBackup string `json:"latest_backup,omitempty"`
	Raw          string `json:"raw"`
}

type IntegrityStatus struct {
	Supported bool   `json:"supported"`
	State     string `json:"state"`
	Raw       string `json:"raw"`
}

// Prober is the single platform-probe capability. Unsupported platforms
// answer every probe with Supported=false rather than scattering
// platform conditionals through call sites.
type Prober interface {
	Updates() UpdatesStatus
	Firewall() FirewallStatus
	Antivirus() AntivirusStatus
	DiskEncryption() DiskEncryptionStatus
	Backup() BackupStatus
	PlatformIntegrity() IntegrityStatus
}

// ForPlatform selects the prober variant for the given GOOS value.
func ForPlatform(goos string, runner CommandRunner) Prober {
	if goos == "darwin" {
		return NewDarwinProber(runner)
	}
	return Unsupported{}
}

// Unsupported answers every probe negatively.
type Unsupported struct{}

func (Unsupported) Updates() UpdatesStatus        { return UpdatesStatus{} }
func (Unsupported) Firewall() FirewallStatus      { return FirewallStatus{State: StateUnknown} }
func (Unsupported) Antivirus() AntivirusStatus    { return AntivirusStatus{Gatekeeper: StateUnknown} }
func (Unsupported) DiskEncryption() DiskEncryptionStatus {
	return DiskEncryptionStatus{State: StateUnknown}
}
func (Unsupported) Backup() BackupStatus { return BackupStatus{} }
func (Unsupported) PlatformIntegrity() IntegrityStatus {
	return IntegrityStatus{State: StateUnknown}
}
