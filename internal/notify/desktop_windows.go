//go:build windows

package notify

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

const toastScript = `
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] > $null
$xml = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
$text = $xml.GetElementsByTagName('text')
$text.Item(0).AppendChild($xml.CreateTextNode($env:RBXCORD_TITLE)) > $null
$text.Item(1).AppendChild($xml.CreateTextNode($env:RBXCORD_MESSAGE)) > $null
$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier($env:RBXCORD_APP).Show($toast)
`

func desktopCommand(title, message string) command {
	return command{
		name: "powershell.exe",
		args: []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", toastScript},
		env: []string{
			"RBXCORD_TITLE=" + title,
			"RBXCORD_MESSAGE=" + message,
			"RBXCORD_APP=" + AppName,
		},
	}
}

// hideWindow keeps PowerShell from flashing a console window.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
