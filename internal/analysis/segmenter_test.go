package analysis

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/ai"
)

type fakeTranscriber struct {
	segments []ai.SpeechSegment
	err      error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaPath string) ([]ai.SpeechSegment, error) {
	return f.segments, f.err
}

type fakeProber struct {
	duration float64
	err      error
}

func (f *fakeProber) ProbeDuration(ctx context.Context, mediaPath string) (float64, error) {
	return f.duration, f.err
}

func writeTestMedia(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0644); err != nil {
		t.Fatalf("Failed to write test media: %v", err)
	}
	return path
}

func TestBuildTimelineFromSpeech(t *testing.T) {
	mediaPath := writeTestMedia(t)

	transcriber := &fakeTranscriber{segments: []ai.SpeechSegment{
		{Start: 0.0, End: 3.2, Text: "welcome to our factory"},
		{Start: 3.5, End: 3.7, Text: "uh"},
		{Start: 4.0, End: 9.1, Text: "we make industrial valves"},
	}}
	segmenter := NewSegmenter(transcriber, &fakeProber{duration: 60})

	segments, err := segmenter.BuildTimeline(context.Background(), mediaPath)
	if err != nil {
		t.Fatalf("BuildTimeline failed: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments (short one dropped), got %d", len(segments))
	}
	if segments[0].Transcript != "welcome to our factory" {
		t.Errorf("Unexpected first transcript: %q", segments[0].Transcript)
	}
	if segments[1].StartTime != 4.0 || segments[1].EndTime != 9.1 {
		t.Errorf("Unexpected second segment bounds: [%v, %v]", segments[1].StartTime, segments[1].EndTime)
	}
	for i := 1; i < len(segments); i++ {
		if segments[i].StartTime < segments[i-1].StartTime {
			t.Errorf("Segments out of order at index %d", i)
		}
	}
	for _, seg := range segments {
		if seg.VisualObjects == nil || seg.OCRText == nil {
			t.Error("Expected visual fields to be initialized empty, got nil")
		}
	}
}

func TestBuildTimelineSilentVideo(t *testing.T) {
	mediaPath := writeTestMedia(t)

	segmenter := NewSegmenter(&fakeTranscriber{}, &fakeProber{duration: 12})

	segments, err := segmenter.BuildTimeline(context.Background(), mediaPath)
	if err != nil {
		t.Fatalf("BuildTimeline failed: %v", err)
	}

	if len(segments) != 3 {
		t.Fatalf("Expected 3 windows for 12s video, got %d", len(segments))
	}

	expected := [][2]float64{{0, 5}, {5, 10}, {10, 12}}
	for i, bounds := range expected {
		if math.Abs(segments[i].StartTime-bounds[0]) > 1e-9 || math.Abs(segments[i].EndTime-bounds[1]) > 1e-9 {
			t.Errorf("Window %d: expected [%v, %v], got [%v, %v]",
				i, bounds[0], bounds[1], segments[i].StartTime, segments[i].EndTime)
		}
		if segments[i].Transcript != "" {
			t.Errorf("Window %d: expected empty transcript, got %q", i, segments[i].Transcript)
		}
	}
}

func TestBuildTimelineDropsEmptyTranscripts(t *testing.T) {
	mediaPath := writeTestMedia(t)

	transcriber := &fakeTranscriber{segments: []ai.SpeechSegment{
		{Start: 0, End: 4, Text: "   "},
		{Start: 5, End: 9, Text: "real speech"},
	}}
	segmenter := NewSegmenter(transcriber, &fakeProber{duration: 20})

	segments, err := segmenter.BuildTimeline(context.Background(), mediaPath)
	if err != nil {
		t.Fatalf("BuildTimeline failed: %v", err)
	}

	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	if segments[0].Transcript != "real speech" {
		t.Errorf("Expected trimmed transcript kept, got %q", segments[0].Transcript)
	}

	// All-blank speech falls through to synthesized windows.
	blank := &fakeTranscriber{segments: []ai.SpeechSegment{{Start: 0, End: 4, Text: " "}}}
	segmenter = NewSegmenter(blank, &fakeProber{duration: 10})

	segments, err = segmenter.BuildTimeline(context.Background(), mediaPath)
	if err != nil {
		t.Fatalf("BuildTimeline failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Expected 2 synthesized windows, got %d", len(segments))
	}
	if segments[0].Transcript != "" || segments[0].EndTime != 5 {
		t.Errorf("Expected synthesized [0,5] window, got %+v", segments[0])
	}
}

func TestBuildTimelineTranscriptionFailure(t *testing.T) {
	mediaPath := writeTestMedia(t)

	transcriber := &fakeTranscriber{err: errors.New("whisper unavailable")}
	segmenter := NewSegmenter(transcriber, &fakeProber{duration: 7})

	segments, err := segmenter.BuildTimeline(context.Background(), mediaPath)
	if err != nil {
		t.Fatalf("Expected transcription failure to degrade, got error: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("Expected 2 windows for 7s video, got %d", len(segments))
	}
	if segments[1].EndTime != 7 {
		t.Errorf("Expected last window clipped to 7, got %v", segments[1].EndTime)
	}
}

func TestBuildTimelineUnknownDuration(t *testing.T) {
	mediaPath := writeTestMedia(t)

	segmenter := NewSegmenter(
		&fakeTranscriber{err: errors.New("no audio stream")},
		&fakeProber{err: errors.New("probe failed")},
	)

	segments, err := segmenter.BuildTimeline(context.Background(), mediaPath)
	if err != nil {
		t.Fatalf("BuildTimeline failed: %v", err)
	}

	if len(segments) != 1 {
		t.Fatalf("Expected single default window, got %d segments", len(segments))
	}
	if segments[0].StartTime != 0 || segments[0].EndTime != 10 {
		t.Errorf("Expected default [0, 10] window, got [%v, %v]", segments[0].StartTime, segments[0].EndTime)
	}
}

func TestBuildTimelineUnreadableFile(t *testing.T) {
	segmenter := NewSegmenter(&fakeTranscriber{}, &fakeProber{duration: 10})

	if _, err := segmenter.BuildTimeline(context.Background(), "/nonexistent/clip.mp4"); err == nil {
		t.Fatal("Expected error for missing media file")
	}

	dir := t.TempDir()
	if _, err := segmenter.BuildTimeline(context.Background(), dir); err == nil {
		t.Fatal("Expected error for directory media path")
	}
}
