//go:build windows

package nativestt

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const supported = true

// recognizeCmd runs a one-shot SAPI dictation pass over the WAV file via
// System.Speech and prints the recognized text.
func recognizeCmd(ctx context.Context, wavPath, language string) *exec.Cmd {
	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Speech
$recognizer = New-Object System.Speech.Recognition.SpeechRecognitionEngine
$recognizer.SetInputToWaveFile("%s")
$recognizer.LoadGrammar((New-Object System.Speech.Recognition.DictationGrammar))
try {
    $result = $recognizer.Recognize()
    if ($result) { $result.Text } else { "" }
} catch { "" }
$recognizer.Dispose()
`, strings.ReplaceAll(wavPath, `"`, "`\""))

	return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script)
}
