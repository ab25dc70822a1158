// Package transcribe converts WhatsApp voice-note audio into text with the
// OpenAI Whisper API.
package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultHTTPTimeout = 90 * time.Second

type Transcriber struct {
	client openaigo.Client
}

type Config struct {
	APIKey  string
	BaseURL string
}

func New(cfg Config) (*Transcriber, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("transcriber: api key is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(&http.Client{Timeout: defaultHTTPTimeout}),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	return &Transcriber{client: openaigo.NewClient(opts...)}, nil
}

// Transcribe returns the spoken text of an OGG/Opus voice note.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("transcriber: empty audio payload")
	}
	resp, err := t.client.Audio.Transcriptions.New(ctx, openaigo.AudioTranscriptionNewParams{
		Model: openaigo.AudioModelWhisper1,
		File:  openaigo.File(bytes.NewReader(audio), "audio.ogg", "audio/ogg"),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("transcribe audio: empty transcription")
	}
	return text, nil
}
