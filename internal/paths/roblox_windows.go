//go:build windows

package paths

// robloxLogCandidates lists log directories relative to the user's home.
func robloxLogCandidates() []string {
	return []string{`AppData\Local\Roblox\logs`}
}
