package analysis

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"
)

// ProcessRequest carries everything the pipeline needs for one video. The
// metadata is populated by the caller (engagement counters come from the
// upstream job), never computed here.
type ProcessRequest struct {
	MediaPath   string
	CompanyID   string
	CompanyName string
	VideoURL    string
	JobID       string
	Metadata    VideoMetadata

	// NumSamples <= 0 selects the automatic per-segment frame count.
	NumSamples int

	// Progress, when set, receives (segments enriched, total segments)
	// after each segment. Called from the worker goroutine.
	Progress func(done, total int)
}

// Pipeline drives the full per-video flow: build timeline, enrich every
// segment in order, aggregate, package. It always returns a result; errors
// surface as a failed AnalysisResult rather than a nil.
type Pipeline struct {
	segmenter *Segmenter
	enricher  *Enricher
}

func NewPipeline(segmenter *Segmenter, enricher *Enricher) *Pipeline {
	return &Pipeline{segmenter: segmenter, enricher: enricher}
}

func (p *Pipeline) ProcessVideo(ctx context.Context, req ProcessRequest) (result *AnalysisResult) {
	filename := filepath.Base(req.MediaPath)

	// The capabilities are external model clients; a panic in any of them
	// must not take down the worker. It becomes a failed result like any
	// other per-video error.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Pipeline panic for %s: %v", filename, r)
			result = p.failedResult(req, fmt.Sprintf("pipeline panic: %v", r))
		}
	}()

	log.Printf("Pipeline started for video: %s", filename)

	segments, err := p.segmenter.BuildTimeline(ctx, req.MediaPath)
	if err != nil {
		log.Printf("Segmentation failed for %s: %v", filename, err)
		return p.failedResult(req, fmt.Sprintf("segmentation failed: %v", err))
	}

	log.Printf("Timeline built for %s: %d segments", filename, len(segments))

	enriched := 0
	skipped := 0
	for i, segment := range segments {
		outcome, err := p.enricher.EnrichSegment(ctx, req.MediaPath, segment, req.NumSamples)
		if err != nil {
			// Invalid bounds coming out of the segmenter would be a bug;
			// isolate it to this segment and keep the video alive.
			log.Printf("Segment %d rejected for %s: %v", i+1, filename, err)
			skipped++
		} else {
			if outcome.Status == EnrichSkipped {
				skipped++
			} else {
				enriched++
			}
		}

		if req.Progress != nil {
			req.Progress(i+1, len(segments))
		}

		if (i+1)%10 == 0 {
			log.Printf("Visual analysis progress for %s: %d/%d segments", filename, i+1, len(segments))
		}
	}

	log.Printf("Visual analysis completed for %s: %d enriched, %d skipped", filename, enriched, skipped)

	result = &AnalysisResult{
		CompanyID:     req.CompanyID,
		CompanyName:   req.CompanyName,
		VideoFilename: filename,
		VideoURL:      req.VideoURL,
		JobID:         req.JobID,
		Metadata:      req.Metadata,
		Segments:      segments,
		Status:        StatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	aggregate(result)

	log.Printf("Pipeline finished for %s. Segments: %d, Objects: %d, OCR texts: %d",
		filename, len(segments), len(result.AllObjects), len(result.AllOCRText))

	return result
}

func (p *Pipeline) failedResult(req ProcessRequest, message string) *AnalysisResult {
	return &AnalysisResult{
		CompanyID:     req.CompanyID,
		CompanyName:   req.CompanyName,
		VideoFilename: filepath.Base(req.MediaPath),
		VideoURL:      req.VideoURL,
		JobID:         req.JobID,
		Metadata:      req.Metadata,
		Segments:      []*VideoSegment{},
		AllObjects:    []string{},
		AllOCRText:    []string{},
		Status:        StatusFailed,
		ErrorMessage:  message,
		CreatedAt:     time.Now().UTC(),
	}
}

// aggregate fills the video-level rollups: sorted set unions of the visual
// fields and the majority sentiment (first-seen label wins a tie).
func aggregate(result *AnalysisResult) {
	objects := make(map[string]bool)
	texts := make(map[string]bool)
	counts := make(map[string]int)
	order := make([]string, 0, 3)

	for _, segment := range result.Segments {
		for _, o := range segment.VisualObjects {
			objects[o] = true
		}
		for _, t := range segment.OCRText {
			texts[t] = true
		}
		if segment.Sentiment != "" {
			if counts[segment.Sentiment] == 0 {
				order = append(order, segment.Sentiment)
			}
			counts[segment.Sentiment]++
		}
	}

	result.AllObjects = sortedKeys(objects)
	result.AllOCRText = sortedKeys(texts)

	dominant := ""
	best := 0
	for _, sentiment := range order {
		if counts[sentiment] > best {
			best = counts[sentiment]
			dominant = sentiment
		}
	}
	result.DominantEmotion = dominant
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
