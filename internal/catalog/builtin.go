package catalog

// BuiltinActions is the shipped macOS remediation set. Command strings
// are split on whitespace and spawned directly, never through a shell;
// entries here must not depend on pipes, globbing, or expansion.
func BuiltinActions() []ActionDefinition {
	return []ActionDefinition{
		NewAction(
			"flush-dns-macos",
			"Flush DNS Cache (macOS)",
			"macos",
			[]string{
				"sudo dscacheutil -flushcache",
				"sudo killall -HUP mDNSResponder",
			},
		),
		NewAction(
			"toggle-wifi-macos",
			"Toggle Wi-Fi (macOS)",
			"macos",
			[]string{
				"networksetup -getairportpower en0",
				"networksetup -setairportpower en0 off",
				"sleep 2",
				"networksetup -setairportpower en0 on",
			},
		).WithRollback([]string{
			"networksetup -setairportpower en0 on",
		}),
		NewAction(
			"clear-app-cache",
			"Clear App Cache (macOS)",
			"macos",
			[]string{
				"mkdir -p /tmp/helperd-cache-backup",
				"ditto ~/Library/Caches /tmp/helperd-cache-backup",
				"rm -rf ~/Library/Caches",
			},
		).WithRollback([]string{
			"ditto /tmp/helperd-cache-backup ~/Library/Caches",
		}),
		NewAction(
			"restart-finder",
			"Restart Finder (macOS)",
			"macos",
			[]string{
				"killall Finder",
			},
		),
		NewAction(
			"clear-recent-items",
			"Clear Recent Items (macOS)",
			"macos",
			[]string{
				"defaults delete com.apple.recentitems RecentApplications",
				"defaults delete com.apple.recentitems RecentDocuments",
				"defaults delete com.apple.recentitems RecentServers",
			},
		),
		NewAction(
			"reset-launchpad",
			"Reset Launchpad Layout (macOS)",
			"macos",
			[]string{
				"defaults write com.apple.dock ResetLaunchPad -bool true",
				"killall Dock",
			},
		),
		NewAction(
			"clear-system-logs",
			"Clear Old System Logs (macOS)",
			"macos",
			[]string{
				"sudo rm -rf /private/var/log/asl",
				"sudo rm -rf /private/var/log/DiagnosticMessages",
			},
		),
	}
}

// Builtin returns the shipped catalog. Construction cannot fail for the
// builtin set; a failure here is a programmer error.
func Builtin() *Catalog {
	c, err := New(BuiltinActions())
	if err != nil {
		panic(err)
	}
	return c
}
