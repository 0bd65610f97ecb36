// Package clipboard delivers transcribed text to the focused application,
// either by copying it or by copying and simulating a paste chord.
package clipboard

import (
	"fmt"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// Copy places text on the system clipboard.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Paste copies text and sends the platform paste chord, then restores the
// previous clipboard contents.
func Paste(text string) error {
	orig, _ := clipboard.ReadAll()
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	// give the clipboard owner time to publish the new contents
	time.Sleep(80 * time.Millisecond)

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("init key synthesis: %w", err)
	}
	if runtime.GOOS == "darwin" {
		kb.HasSuperKey(true)
	} else {
		kb.HasCTRL(true)
	}
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("send paste chord: %w", err)
	}

	time.Sleep(120 * time.Millisecond)
	_ = clipboard.WriteAll(orig)
	return nil
}
