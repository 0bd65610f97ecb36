//go:build darwin

package nativestt

import (
	"context"
	"fmt"
	"os/exec"
)

const supported = true

// recognizeCmd runs a one-shot Speech framework recognition over the WAV
// file through the swift interpreter and prints the final transcription.
func recognizeCmd(ctx context.Context, wavPath, language string) *exec.Cmd {
	script := fmt.Sprintf(`
import Speech
import Foundation

let semaphore = DispatchSemaphore(value: 0)
var resultText = ""

let recognizer = SFSpeechRecognizer(locale: Locale(identifier: "%s"))
let url = URL(fileURLWithPath: "%s")
let request = SFSpeechURLRecognitionRequest(url: url)

recognizer?.recognitionTask(with: request) { result, error in
    if let result = result, result.isFinal {
        resultText = result.bestTranscription.formattedString
    }
    semaphore.signal()
}

semaphore.wait()
print(resultText)
`, language, wavPath)

	return exec.CommandContext(ctx, "swift", "-e", script)
}
