package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperTranscriber implements Transcriber on the OpenAI audio API. The
// verbose JSON response carries per-segment timestamps, which become the
// canonical timeline upstream.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

func NewWhisperTranscriber(apiKey, baseURL string) *WhisperTranscriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperTranscriber{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.Whisper1,
	}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, mediaPath string) ([]SpeechSegment, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: mediaPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}

	segments := make([]SpeechSegment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, SpeechSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}

	log.Printf("Transcription returned %d speech segments for %s", len(segments), mediaPath)
	return segments, nil
}
