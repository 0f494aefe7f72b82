//go:build darwin

package paths

// robloxLogCandidates lists log directories relative to the user's home.
// Newer clients write to ~/Library/Logs/Roblox; older installs keep logs
// under Application Support.
func robloxLogCandidates() []string {
	return []string{
		"Library/Application Support/Roblox/logs",
		"Library/Logs/Roblox",
	}
}
