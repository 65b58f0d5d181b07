package analysis

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/ai"
)

// VisualAnalyzer runs the injected detector and recognizer over a single
// frame and filters both by confidence. Capability failures degrade to empty
// results for that frame; the caller decides whether to keep going.
type VisualAnalyzer struct {
	detector           ai.ObjectDetector
	recognizer         ai.TextRecognizer
	detectorConfidence float64
	ocrConfidence      float64
}

func NewVisualAnalyzer(detector ai.ObjectDetector, recognizer ai.TextRecognizer, detectorConfidence, ocrConfidence float64) *VisualAnalyzer {
	return &VisualAnalyzer{
		detector:           detector,
		recognizer:         recognizer,
		detectorConfidence: detectorConfidence,
		ocrConfidence:      ocrConfidence,
	}
}

// AnalyzeFrame returns the unique object labels and trimmed text strings
// found in one frame, each above its confidence threshold.
func (a *VisualAnalyzer) AnalyzeFrame(ctx context.Context, frame []byte) ([]string, []string) {
	objects := a.detectFrameObjects(ctx, frame)
	texts := a.recognizeFrameText(ctx, frame)
	return objects, texts
}

func (a *VisualAnalyzer) detectFrameObjects(ctx context.Context, frame []byte) []string {
	detections, err := a.detector.DetectObjects(ctx, frame)
	if err != nil {
		log.Printf("Object detection failed: %v", err)
		return nil
	}

	seen := make(map[string]bool)
	labels := make([]string, 0, len(detections))
	for _, d := range detections {
		if d.Confidence < a.detectorConfidence {
			continue
		}
		label := strings.TrimSpace(d.Label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	sort.Strings(labels)
	return labels
}

func (a *VisualAnalyzer) recognizeFrameText(ctx context.Context, frame []byte) []string {
	detections, err := a.recognizer.RecognizeText(ctx, frame)
	if err != nil {
		log.Printf("Text recognition failed: %v", err)
		return nil
	}

	seen := make(map[string]bool)
	texts := make([]string, 0, len(detections))
	for _, d := range detections {
		if d.Confidence < a.ocrConfidence {
			continue
		}
		text := strings.TrimSpace(d.Text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		texts = append(texts, text)
	}

	sort.Strings(texts)
	return texts
}
