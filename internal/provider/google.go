package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sjroesink/whisper/internal/audio"
	"github.com/sjroesink/whisper/internal/errors"
)

const googleDefaultEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// Google transcribes through the Google Cloud Speech synchronous recognize
// call, authenticated with an API key.
type Google struct {
	Client *http.Client
}

func (Google) ID() ID          { return GoogleCloud }
func (Google) Name() string    { return "Google Cloud STT" }
func (Google) Available() bool { return true }

type googleRequest struct {
	Config googleConfig `json:"config"`
	Audio  googleAudio  `json:"audio"`
}

type googleConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
	Model           string `json:"model"`
}

type googleAudio struct {
	Content string `json:"content"`
}

type googleResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

func (g Google) Transcribe(ctx context.Context, samples []float32, cfg Config) (*Result, error) {
	if cfg.APIKey == "" {
		return nil, errors.ConfigErr("Google Cloud API key not configured")
	}

	start := time.Now()

	wavBytes, err := audio.EncodeWAV(samples, audio.TargetRate)
	if err != nil {
		return nil, errors.TranscribeErr(err, "encode audio")
	}

	language := cfg.Language
	if language == "" || language == "auto" {
		language = "en-US"
	}
	model := cfg.Model
	if model == "" {
		model = "default"
	}

	payload, err := json.Marshal(googleRequest{
		Config: googleConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: audio.TargetRate,
			LanguageCode:    language,
			Model:           model,
		},
		Audio: googleAudio{Content: base64.StdEncoding.EncodeToString(wavBytes)},
	})
	if err != nil {
		return nil, errors.TranscribeErr(err, "encode request")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = googleDefaultEndpoint
	}
	url := fmt.Sprintf("%s?key=%s", endpoint, cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.TranscribeErr(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.TranscribeErr(err, "Google Cloud request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.TranscribeErr(nil, "Google Cloud API error (%s): %s", resp.Status, bytes.TrimSpace(body))
	}

	var decoded googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.TranscribeErr(err, "decode response")
	}

	var text string
	if len(decoded.Results) > 0 && len(decoded.Results[0].Alternatives) > 0 {
		text = decoded.Results[0].Alternatives[0].Transcript
	}

	return &Result{
		Text:     text,
		Provider: GoogleCloud,
		Duration: time.Since(start),
		Language: language,
	}, nil
}
