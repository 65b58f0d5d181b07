package analysis

import "time"

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// VideoSegment is one time window of a video's timeline. The transcript is
// empty for synthesized windows; Sentiment and KeyEntities are filled by a
// downstream enrichment step and only consumed here during aggregation.
type VideoSegment struct {
	StartTime     float64  `json:"start_time"`
	EndTime       float64  `json:"end_time"`
	Transcript    string   `json:"transcript"`
	VisualObjects []string `json:"visual_objects"`
	OCRText       []string `json:"ocr_text"`
	Sentiment     string   `json:"sentiment,omitempty"`
	KeyEntities   []string `json:"key_entities,omitempty"`
}

func (s *VideoSegment) Duration() float64 {
	return s.EndTime - s.StartTime
}

type VideoMetadata struct {
	Platform     string `json:"platform"`
	ViewCount    int    `json:"view_count"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}

type AnalysisResult struct {
	ID              string          `json:"id,omitempty"`
	CompanyID       string          `json:"company_id"`
	CompanyName     string          `json:"company_name"`
	VideoFilename   string          `json:"video_filename"`
	VideoURL        string          `json:"video_url,omitempty"`
	Metadata        VideoMetadata   `json:"metadata"`
	Segments        []*VideoSegment `json:"segments"`
	AllObjects      []string        `json:"all_objects"`
	AllOCRText      []string        `json:"all_ocr_text"`
	DominantEmotion string          `json:"dominant_emotion,omitempty"`
	Status          string          `json:"status"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	JobID           string          `json:"job_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
