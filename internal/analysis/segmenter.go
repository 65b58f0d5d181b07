package analysis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/ai"
)

const (
	// Speech segments shorter than this are dropped before entering the
	// timeline; they are almost always VAD noise.
	minSegmentDuration = 0.5

	// Width of the synthesized windows used when a video has no speech.
	fallbackWindow = 5.0

	// Last-resort window when the duration cannot be probed either.
	defaultWindowEnd = 10.0
)

// Segmenter builds the canonical timeline for a video. Speech boundaries win
// when present; otherwise fixed time windows are synthesized so that every
// readable video yields at least one analyzable segment. The only error path
// is an unreadable file.
type Segmenter struct {
	transcriber ai.Transcriber
	prober      ai.DurationProber
}

func NewSegmenter(transcriber ai.Transcriber, prober ai.DurationProber) *Segmenter {
	return &Segmenter{transcriber: transcriber, prober: prober}
}

func (s *Segmenter) BuildTimeline(ctx context.Context, mediaPath string) ([]*VideoSegment, error) {
	info, err := os.Stat(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("media file not readable: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("media path is a directory: %s", mediaPath)
	}

	speech, err := s.transcriber.Transcribe(ctx, mediaPath)
	if err != nil {
		log.Printf("Transcription failed for %s: %v. Falling back to time-based segments", mediaPath, err)
		speech = nil
	}

	segments := make([]*VideoSegment, 0, len(speech))
	for _, sp := range speech {
		if sp.End-sp.Start < minSegmentDuration {
			continue
		}
		text := strings.TrimSpace(sp.Text)
		if text == "" {
			// An empty transcript would masquerade as a synthesized window.
			continue
		}
		segments = append(segments, &VideoSegment{
			StartTime:     sp.Start,
			EndTime:       sp.End,
			Transcript:    text,
			VisualObjects: []string{},
			OCRText:       []string{},
		})
	}

	if len(segments) > 0 {
		return segments, nil
	}

	log.Printf("No speech segments for %s, synthesizing time windows", mediaPath)

	duration, err := s.prober.ProbeDuration(ctx, mediaPath)
	if err != nil {
		log.Printf("Duration probe failed for %s: %v. Using default window", mediaPath, err)
		duration = 0
	}

	for start := 0.0; start < duration; start += fallbackWindow {
		end := start + fallbackWindow
		if end > duration {
			end = duration
		}
		if end <= start {
			break
		}
		segments = append(segments, &VideoSegment{
			StartTime:     start,
			EndTime:       end,
			VisualObjects: []string{},
			OCRText:       []string{},
		})
	}

	if len(segments) == 0 {
		segments = append(segments, &VideoSegment{
			StartTime:     0,
			EndTime:       defaultWindowEnd,
			VisualObjects: []string{},
			OCRText:       []string{},
		})
	}

	return segments, nil
}
