//go:build !windows

package util

import (
	"errors"
	"os/exec"
	"runtime"
)

// browserCommand picks the platform opener: open(1) on macOS, xdg-open
// everywhere else.
func browserCommand(url string) (*exec.Cmd, error) {
	if url == "" {
		return nil, errors.New("empty url")
	}
	if runtime.GOOS == "darwin" {
		return exec.Command("open", url), nil
	}
	return exec.Command("xdg-open", url), nil
}
