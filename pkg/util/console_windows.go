//go:build windows

package util

import "syscall"

var (
	kernel32        = syscall.NewLazyDLL("kernel32.dll")
	procFreeConsole = kernel32.NewProc("FreeConsole")
)

// HideConsoleWindow calls FreeConsole so the tray daemon runs without a
// visible console when launched from Explorer.
func HideConsoleWindow() {
	procFreeConsole.Call()
}
