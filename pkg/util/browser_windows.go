//go:build windows

package util

import (
	"errors"
	"os/exec"
	"syscall"
)

// browserCommand routes through rundll32 so no cmd window flashes when the
// daemon runs detached from a console.
func browserCommand(url string) (*exec.Cmd, error) {
	if url == "" {
		return nil, errors.New("empty url")
	}
	cmd := exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	return cmd, nil
}
