package analysis

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/ai"
)

func newTestPipeline(transcriber ai.Transcriber, extractor ai.FrameExtractor, detector ai.ObjectDetector, recognizer ai.TextRecognizer) *Pipeline {
	segmenter := NewSegmenter(transcriber, &fakeProber{duration: 30})
	analyzer := NewVisualAnalyzer(detector, recognizer, 0.25, 0.5)
	enricher := NewEnricher(extractor, analyzer)
	return NewPipeline(segmenter, enricher)
}

func TestProcessVideoCompleted(t *testing.T) {
	mediaPath := writeTestMedia(t)

	transcriber := &fakeTranscriber{segments: []ai.SpeechSegment{
		{Start: 0, End: 4, Text: "our new product line"},
		{Start: 4, End: 9, Text: "available in stores now"},
	}}
	detector := &fakeDetector{detections: []ai.Detection{
		{Label: "shelf", Confidence: 0.8},
		{Label: "bottle", Confidence: 0.9},
	}}
	recognizer := &fakeRecognizer{detections: []ai.TextDetection{
		{Text: "NEW", Confidence: 0.9},
	}}

	pipeline := newTestPipeline(transcriber, &fakeExtractor{}, detector, recognizer)

	var progress [][2]int
	result := pipeline.ProcessVideo(context.Background(), ProcessRequest{
		MediaPath:   mediaPath,
		CompanyID:   "c-1",
		CompanyName: "Acme",
		JobID:       "j-1",
		Progress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
	})

	if result.Status != StatusCompleted {
		t.Fatalf("Expected status %q, got %q (%s)", StatusCompleted, result.Status, result.ErrorMessage)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(result.Segments))
	}
	if result.VideoFilename != "clip.mp4" {
		t.Errorf("Expected filename clip.mp4, got %q", result.VideoFilename)
	}

	expectedObjects := []string{"bottle", "shelf"}
	if !reflect.DeepEqual(result.AllObjects, expectedObjects) {
		t.Errorf("Expected rollup objects %v, got %v", expectedObjects, result.AllObjects)
	}
	if !reflect.DeepEqual(result.AllOCRText, []string{"NEW"}) {
		t.Errorf("Expected rollup texts [NEW], got %v", result.AllOCRText)
	}

	expectedProgress := [][2]int{{1, 2}, {2, 2}}
	if !reflect.DeepEqual(progress, expectedProgress) {
		t.Errorf("Expected progress %v, got %v", expectedProgress, progress)
	}
	if result.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestProcessVideoSegmentFailureIsolated(t *testing.T) {
	mediaPath := writeTestMedia(t)

	transcriber := &fakeTranscriber{segments: []ai.SpeechSegment{
		{Start: 0, End: 4, Text: "first"},
		{Start: 10, End: 14, Text: "second"},
		{Start: 20, End: 24, Text: "third"},
		{Start: 30, End: 34, Text: "fourth"},
		{Start: 40, End: 44, Text: "fifth"},
	}}
	detector := &fakeDetector{detections: []ai.Detection{{Label: "logo", Confidence: 0.9}}}

	// All frames of the third segment fail to extract.
	extractor := &fakeExtractor{failFrom: 20, failTo: 24}

	pipeline := newTestPipeline(transcriber, extractor, detector, &fakeRecognizer{})
	result := pipeline.ProcessVideo(context.Background(), ProcessRequest{MediaPath: mediaPath})

	if result.Status != StatusCompleted {
		t.Fatalf("Expected completed despite failing segment, got %q", result.Status)
	}

	if len(result.Segments[2].VisualObjects) != 0 {
		t.Errorf("Expected failing segment to keep empty objects, got %v", result.Segments[2].VisualObjects)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if !reflect.DeepEqual(result.Segments[i].VisualObjects, []string{"logo"}) {
			t.Errorf("Segment %d: expected [logo], got %v", i, result.Segments[i].VisualObjects)
		}
	}
	if !reflect.DeepEqual(result.AllObjects, []string{"logo"}) {
		t.Errorf("Expected rollup [logo], got %v", result.AllObjects)
	}
}

func TestProcessVideoSegmentationFailure(t *testing.T) {
	pipeline := newTestPipeline(&fakeTranscriber{}, &fakeExtractor{}, &fakeDetector{}, &fakeRecognizer{})

	result := pipeline.ProcessVideo(context.Background(), ProcessRequest{
		MediaPath:   "/nonexistent/clip.mp4",
		CompanyName: "Acme",
	})

	if result == nil {
		t.Fatal("Expected a failed result, got nil")
	}
	if result.Status != StatusFailed {
		t.Fatalf("Expected status %q, got %q", StatusFailed, result.Status)
	}
	if !strings.HasPrefix(result.ErrorMessage, "segmentation failed:") {
		t.Errorf("Unexpected error message: %q", result.ErrorMessage)
	}
	if result.Segments == nil || result.AllObjects == nil || result.AllOCRText == nil {
		t.Error("Expected empty slices on failed result, got nil")
	}
	if result.CompanyName != "Acme" {
		t.Errorf("Expected identity preserved on failure, got %q", result.CompanyName)
	}
}

type panickingDetector struct{}

func (panickingDetector) DetectObjects(ctx context.Context, frame []byte) ([]ai.Detection, error) {
	panic("model runtime fault")
}

type panickingTranscriber struct{}

func (panickingTranscriber) Transcribe(ctx context.Context, mediaPath string) ([]ai.SpeechSegment, error) {
	panic("decoder crashed")
}

func TestProcessVideoRecoversCapabilityPanic(t *testing.T) {
	mediaPath := writeTestMedia(t)

	transcriber := &fakeTranscriber{segments: []ai.SpeechSegment{
		{Start: 0, End: 4, Text: "hello"},
	}}

	tests := []struct {
		name     string
		pipeline *Pipeline
		message  string
	}{
		{
			name:     "detector panic",
			pipeline: newTestPipeline(transcriber, &fakeExtractor{}, panickingDetector{}, &fakeRecognizer{}),
			message:  "model runtime fault",
		},
		{
			name:     "transcriber panic",
			pipeline: newTestPipeline(panickingTranscriber{}, &fakeExtractor{}, &fakeDetector{}, &fakeRecognizer{}),
			message:  "decoder crashed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.pipeline.ProcessVideo(context.Background(), ProcessRequest{
				MediaPath:   mediaPath,
				CompanyName: "Acme",
			})

			if result == nil {
				t.Fatal("Expected a failed result, got nil")
			}
			if result.Status != StatusFailed {
				t.Fatalf("Expected status %q, got %q", StatusFailed, result.Status)
			}
			if !strings.Contains(result.ErrorMessage, tt.message) {
				t.Errorf("Expected panic message in error, got %q", result.ErrorMessage)
			}
			if result.CompanyName != "Acme" {
				t.Errorf("Expected identity preserved, got %q", result.CompanyName)
			}
		})
	}
}

func TestAggregateDominantEmotion(t *testing.T) {
	tests := []struct {
		name       string
		sentiments []string
		expected   string
	}{
		{"clear majority", []string{SentimentPositive, SentimentPositive, SentimentNeutral}, SentimentPositive},
		{"first seen wins tie", []string{SentimentNeutral, SentimentPositive}, SentimentNeutral},
		{"no sentiments", []string{"", "", ""}, ""},
		{"single", []string{SentimentNegative}, SentimentNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &AnalysisResult{}
			for _, s := range tt.sentiments {
				result.Segments = append(result.Segments, &VideoSegment{Sentiment: s})
			}

			aggregate(result)

			if result.DominantEmotion != tt.expected {
				t.Errorf("Expected dominant emotion %q, got %q", tt.expected, result.DominantEmotion)
			}
		})
	}
}
