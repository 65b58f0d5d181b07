package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/analysis"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/database"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/storage"
)

var (
	ErrJobNotFound      = errors.New("job not found or not ready")
	ErrNoJobs           = errors.New("no completed jobs found")
	ErrMediaMissing     = errors.New("media file not found")
	ErrAlreadyProcessed = errors.New("video already processed")
	ErrStatusNotFound   = errors.New("no analysis found for video")
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// JobSource is the upstream job store; satisfied by database.JobStore.
type JobSource interface {
	PendingJobs(ctx context.Context, limit int) ([]*database.VideoJob, error)
	JobByID(ctx context.Context, jobID uuid.UUID) (*database.VideoJob, error)
	JobsByCompany(ctx context.Context, companyID uuid.UUID) ([]*database.VideoJob, error)
}

// ResultSink is the analysis result store; satisfied by database.ResultStore.
type ResultSink interface {
	Insert(ctx context.Context, result *analysis.AnalysisResult) (bool, error)
	Exists(ctx context.Context, companyName, videoFilename string) (bool, error)
	ExistsJob(ctx context.Context, jobID string) (bool, error)
	GetByID(ctx context.Context, id string) (*analysis.AnalysisResult, error)
}

// VideoStatus is the poll-side view of one dispatched video.
type VideoStatus struct {
	VideoID      string `json:"video_id"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// BatchSummary reports what a batch dispatch did.
type BatchSummary struct {
	Found            int      `json:"found"`
	AlreadyProcessed int      `json:"already_processed"`
	Started          int      `json:"started"`
	Rejected         int      `json:"rejected"`
	VideoIDs         []string `json:"video_ids,omitempty"`
}

// Dispatcher pulls jobs from the upstream store and runs them through the
// pipeline on a bounded worker pool, so dispatch calls return immediately.
// Per-video state lives in an in-memory map until the terminal record is
// persisted; after that the result store answers status queries.
type Dispatcher struct {
	jobs     JobSource
	results  ResultSink
	pipeline *analysis.Pipeline
	media    storage.MediaLocator

	workers chan struct{}
	wg      sync.WaitGroup

	mu       sync.RWMutex
	statuses map[string]*VideoStatus
}

func NewDispatcher(jobs JobSource, results ResultSink, pipeline *analysis.Pipeline, media storage.MediaLocator, workerCount int) *Dispatcher {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Dispatcher{
		jobs:     jobs,
		results:  results,
		pipeline: pipeline,
		media:    media,
		workers:  make(chan struct{}, workerCount),
		statuses: make(map[string]*VideoStatus),
	}
}

// ProcessAllPending dispatches every unprocessed completed job, up to limit.
// Jobs with missing media are counted as rejected and skipped; they do not
// abort the batch.
func (d *Dispatcher) ProcessAllPending(ctx context.Context, limit int) (*BatchSummary, error) {
	jobs, err := d.jobs.PendingJobs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	return d.dispatchBatch(ctx, jobs)
}

// ProcessJob dispatches one job by its upstream identifier and returns the
// video ID to poll for status.
func (d *Dispatcher) ProcessJob(ctx context.Context, jobID uuid.UUID) (string, error) {
	job, err := d.jobs.JobByID(ctx, jobID)
	if err != nil {
		return "", fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return "", ErrJobNotFound
	}

	processed, err := d.isProcessed(ctx, job)
	if err != nil {
		return "", err
	}
	if processed {
		return "", ErrAlreadyProcessed
	}

	return d.startJob(job)
}

// ProcessCompany dispatches all unprocessed completed jobs for one company.
func (d *Dispatcher) ProcessCompany(ctx context.Context, companyID uuid.UUID) (*BatchSummary, error) {
	jobs, err := d.jobs.JobsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	return d.dispatchBatch(ctx, jobs)
}

// ListPending returns completed jobs that have no analysis record yet.
func (d *Dispatcher) ListPending(ctx context.Context, limit int) ([]*database.VideoJob, error) {
	jobs, err := d.jobs.PendingJobs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	pending := make([]*database.VideoJob, 0, len(jobs))
	for _, job := range jobs {
		processed, err := d.isProcessed(ctx, job)
		if err != nil {
			return nil, err
		}
		if !processed {
			pending = append(pending, job)
		}
	}

	return pending, nil
}

// Status reports the state of a dispatched video: in-flight state from the
// status map, terminal state from the result store.
func (d *Dispatcher) Status(ctx context.Context, videoID string) (*VideoStatus, error) {
	d.mu.RLock()
	status, ok := d.statuses[videoID]
	if ok {
		copied := *status
		d.mu.RUnlock()
		return &copied, nil
	}
	d.mu.RUnlock()

	result, err := d.results.GetByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}
	if result == nil {
		return nil, ErrStatusNotFound
	}

	status = &VideoStatus{VideoID: videoID, Status: result.Status, ErrorMessage: result.ErrorMessage}
	if result.Status == analysis.StatusCompleted {
		status.Progress = 100
	}
	return status, nil
}

// Wait blocks until all in-flight videos finish. Used on shutdown and in
// tests; dispatch callers never wait.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, jobs []*database.VideoJob) (*BatchSummary, error) {
	summary := &BatchSummary{Found: len(jobs)}

	for _, job := range jobs {
		processed, err := d.isProcessed(ctx, job)
		if err != nil {
			return nil, err
		}
		if processed {
			summary.AlreadyProcessed++
			continue
		}

		videoID, err := d.startJob(job)
		if err != nil {
			log.Printf("[DISPATCH] Rejected job %s: %v", job.JobID, err)
			summary.Rejected++
			continue
		}

		summary.Started++
		summary.VideoIDs = append(summary.VideoIDs, videoID)
	}

	log.Printf("[DISPATCH] Batch: %d found, %d already processed, %d started, %d rejected",
		summary.Found, summary.AlreadyProcessed, summary.Started, summary.Rejected)

	return summary, nil
}

func (d *Dispatcher) isProcessed(ctx context.Context, job *database.VideoJob) (bool, error) {
	exists, err := d.results.ExistsJob(ctx, job.JobID.String())
	if err != nil {
		return false, fmt.Errorf("failed dedup check: %w", err)
	}
	if exists {
		return true, nil
	}

	exists, err = d.results.Exists(ctx, job.CompanyName, filepath.Base(job.FilePath))
	if err != nil {
		return false, fmt.Errorf("failed dedup check: %w", err)
	}
	return exists, nil
}

// startJob validates the job synchronously, then hands the pipeline run to a
// worker. Input errors (missing media) surface to the caller; everything
// after this point ends up as a persisted Completed or Failed record.
func (d *Dispatcher) startJob(job *database.VideoJob) (string, error) {
	mediaPath, err := d.media.Resolve(job.FilePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaMissing, err)
	}

	videoID := uuid.New().String()

	d.mu.Lock()
	d.statuses[videoID] = &VideoStatus{VideoID: videoID, Status: StatusPending}
	d.mu.Unlock()

	d.wg.Add(1)
	go d.runJob(videoID, job, mediaPath)

	log.Printf("[DISPATCH] Started job %s as video %s (%s)", job.JobID, videoID, filepath.Base(mediaPath))
	return videoID, nil
}

func (d *Dispatcher) runJob(videoID string, job *database.VideoJob, mediaPath string) {
	defer d.wg.Done()

	d.workers <- struct{}{}
	defer func() { <-d.workers }()

	d.setStatus(videoID, StatusProcessing, 0, "")

	// A dispatched job runs to completion; it must not die with the HTTP
	// request that triggered it.
	ctx := context.Background()

	req := analysis.ProcessRequest{
		MediaPath:   mediaPath,
		CompanyID:   job.CompanyID.String(),
		CompanyName: job.CompanyName,
		VideoURL:    job.VideoURL,
		JobID:       job.JobID.String(),
		Metadata: analysis.VideoMetadata{
			Platform:     job.Platform,
			ViewCount:    job.ViewCount,
			LikeCount:    job.LikeCount,
			CommentCount: job.CommentCount,
		},
		Progress: func(done, total int) {
			progress := done * 100 / total
			if progress > 99 {
				progress = 99
			}
			d.setStatus(videoID, StatusProcessing, progress, "")
		},
	}

	result := d.pipeline.ProcessVideo(ctx, req)
	result.ID = videoID

	inserted, err := d.results.Insert(ctx, result)
	if err != nil {
		log.Printf("[DISPATCH] Failed to persist result for video %s: %v", videoID, err)
		d.setStatus(videoID, StatusFailed, 0, fmt.Sprintf("failed to persist result: %v", err))
		return
	}
	if inserted {
		// The store answers status queries for this ID from here on;
		// keeping the entry would grow the map for the process lifetime.
		d.mu.Lock()
		delete(d.statuses, videoID)
		d.mu.Unlock()
		return
	}

	// Lost a race with a concurrent dispatch of the same identity; the store
	// kept the first record under a different ID, so this ID stays answerable
	// only through the map.
	log.Printf("[DISPATCH] Result for video %s already persisted by another dispatch", videoID)
	switch result.Status {
	case analysis.StatusCompleted:
		d.setStatus(videoID, StatusCompleted, 100, "")
	default:
		d.setStatus(videoID, StatusFailed, 0, result.ErrorMessage)
	}
}

func (d *Dispatcher) setStatus(videoID, status string, progress int, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[videoID] = &VideoStatus{
		VideoID:      videoID,
		Status:       status,
		Progress:     progress,
		ErrorMessage: message,
	}
}
