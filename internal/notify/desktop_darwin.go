//go:build darwin

package notify

import "os/exec"

const appleScript = `display notification (system attribute "RBXCORD_MESSAGE") with title (system attribute "RBXCORD_TITLE")`

func desktopCommand(title, message string) command {
	return command{
		name: "osascript",
		args: []string{"-e", appleScript},
		env:  []string{"RBXCORD_TITLE=" + title, "RBXCORD_MESSAGE=" + message},
	}
}

func hideWindow(*exec.Cmd) {}
