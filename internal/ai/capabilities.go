package ai

import "context"

// SpeechSegment is one time-stamped span of recognized speech.
type SpeechSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcriber converts a media file's audio track into ordered speech
// segments. An empty slice (no speech detected) is a valid result.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) ([]SpeechSegment, error)
}

type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type TextDetection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type ObjectDetector interface {
	DetectObjects(ctx context.Context, frame []byte) ([]Detection, error)
}

type TextRecognizer interface {
	RecognizeText(ctx context.Context, frame []byte) ([]TextDetection, error)
}

// FrameExtractor pulls a single still image out of a video container.
type FrameExtractor interface {
	ExtractFrameAt(ctx context.Context, mediaPath string, timestamp float64) ([]byte, error)
}

// DurationProber reports a container's playback duration in seconds.
type DurationProber interface {
	ProbeDuration(ctx context.Context, mediaPath string) (float64, error)
}
