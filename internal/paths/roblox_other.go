//go:build !windows && !darwin

package paths

// robloxLogCandidates lists log directories relative to the user's home.
// Linux installs run the client under Wine/Sober, which mirror the
// XDG data layout.
func robloxLogCandidates() []string {
	return []string{".local/share/Roblox/logs"}
}
