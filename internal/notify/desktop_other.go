//go:build !windows && !darwin

package notify

import "os/exec"

func desktopCommand(title, message string) command {
	return command{
		name: "notify-send",
		args: []string{"--app-name=" + AppName, "--", title, message},
	}
}

func hideWindow(*exec.Cmd) {}
