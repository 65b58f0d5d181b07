package analysis

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/ai"
)

// EnrichStatus tags the outcome of enriching one segment.
type EnrichStatus string

const (
	// EnrichOK: every sampled frame was extracted and analyzed.
	EnrichOK EnrichStatus = "ok"
	// EnrichPartial: at least one frame succeeded, others were skipped.
	EnrichPartial EnrichStatus = "partial"
	// EnrichSkipped: no frame could be analyzed; the segment keeps empty
	// visual fields, which is a valid non-error outcome.
	EnrichSkipped EnrichStatus = "skipped"
)

// EnrichOutcome is the per-segment record of what the enricher managed to do.
type EnrichOutcome struct {
	Status         EnrichStatus
	FramesSampled  int
	FramesAnalyzed int
}

// Enricher applies the frame sampler and visual analyzer to one segment,
// folding per-frame results into the segment's unique sets.
type Enricher struct {
	extractor ai.FrameExtractor
	analyzer  *VisualAnalyzer
}

func NewEnricher(extractor ai.FrameExtractor, analyzer *VisualAnalyzer) *Enricher {
	return &Enricher{extractor: extractor, analyzer: analyzer}
}

// EnrichSegment mutates the segment's visual fields in place. numSamples <= 0
// selects the automatic count from the segment duration. A segment with
// inverted bounds is a programmer error, not a runtime condition.
func (e *Enricher) EnrichSegment(ctx context.Context, mediaPath string, segment *VideoSegment, numSamples int) (EnrichOutcome, error) {
	if segment.StartTime >= segment.EndTime {
		return EnrichOutcome{}, fmt.Errorf("invalid segment: start_time (%.2f) >= end_time (%.2f)", segment.StartTime, segment.EndTime)
	}

	if numSamples <= 0 {
		numSamples = AutoSampleCount(segment.Duration())
	}
	timestamps := SampleTimestamps(segment.StartTime, segment.EndTime, numSamples)

	objects := make(map[string]bool)
	texts := make(map[string]bool)
	analyzed := 0

	for _, ts := range timestamps {
		frame, err := e.extractor.ExtractFrameAt(ctx, mediaPath, ts)
		if err != nil {
			log.Printf("Frame could not be read: %s @ %.2fs: %v", mediaPath, ts, err)
			continue
		}

		frameObjects, frameTexts := e.analyzer.AnalyzeFrame(ctx, frame)
		for _, o := range frameObjects {
			objects[o] = true
		}
		for _, t := range frameTexts {
			texts[t] = true
		}
		analyzed++
	}

	mergeSet(&segment.VisualObjects, objects)
	mergeSet(&segment.OCRText, texts)

	outcome := EnrichOutcome{
		FramesSampled:  len(timestamps),
		FramesAnalyzed: analyzed,
	}
	switch {
	case analyzed == 0:
		outcome.Status = EnrichSkipped
	case analyzed < len(timestamps):
		outcome.Status = EnrichPartial
	default:
		outcome.Status = EnrichOK
	}

	return outcome, nil
}

func mergeSet(dst *[]string, extra map[string]bool) {
	for _, v := range *dst {
		extra[v] = true
	}
	merged := make([]string, 0, len(extra))
	for v := range extra {
		merged = append(merged, v)
	}
	sort.Strings(merged)
	*dst = merged
}
