//go:build !windows && !darwin

package nativestt

import (
	"context"
	"os/exec"
)

const supported = false

// recognizeCmd is never reached; Transcribe bails out first on unsupported
// platforms.
func recognizeCmd(ctx context.Context, wavPath, language string) *exec.Cmd {
	return exec.CommandContext(ctx, "false")
}
