// Package util holds the small OS helpers a desktop-resident daemon needs:
// opening the settings page in the default browser and detaching the console
// window on Windows.
package util

import "fmt"

// OpenBrowser opens url in the user's default browser. The child process is
// started and not waited on.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	return nil
}
