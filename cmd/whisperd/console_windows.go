//go:build windows

package main

import "github.com/sjroesink/whisper/pkg/util"

// hideConsole detaches from the console when launched outside a terminal,
// so the daemon runs as a tray-only process.
func hideConsole() {
	if flagDebug {
		return
	}
	util.HideConsoleWindow()
}
