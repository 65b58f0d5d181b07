package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VideoJob is a completed download job joined with its post, profile and
// company context — everything the pipeline needs for one video.
type VideoJob struct {
	JobID        uuid.UUID
	FilePath     string
	VideoURL     string
	Platform     string
	CompanyID    uuid.UUID
	CompanyName  string
	ViewCount    int
	LikeCount    int
	CommentCount int
}

// JobStore reads video download jobs from the upstream PostgreSQL database
// maintained by the discovery/download agents. This side never writes.
type JobStore struct {
	pool *pgxpool.Pool
}

func NewJobStore(ctx context.Context, databaseURL string) (*JobStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping job database: %w", err)
	}

	return &JobStore{pool: pool}, nil
}

func (s *JobStore) Close() {
	s.pool.Close()
}

const jobSelect = `
	SELECT j.id::text, j.file_path, j.post_url, j.platform,
	       c.id::text, c.name,
	       COALESCE(p.view_count, 0), COALESCE(p.like_count, 0), COALESCE(p.comment_count, 0)
	FROM video_download_jobs j
	JOIN social_posts p ON p.id = j.social_post_id
	JOIN social_profiles pr ON pr.id = p.social_profile_id
	JOIN companies c ON c.id = pr.company_id`

// PendingJobs returns completed download jobs ready for analysis, oldest
// first. Filtering out already-analyzed videos is the dispatcher's concern.
func (s *JobStore) PendingJobs(ctx context.Context, limit int) ([]*VideoJob, error) {
	query := jobSelect + `
	WHERE j.status = 'done' AND j.file_path IS NOT NULL
	ORDER BY j.created_at
	LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// JobByID returns the job when it exists and is ready for analysis
// (downloaded, file path recorded), nil otherwise.
func (s *JobStore) JobByID(ctx context.Context, jobID uuid.UUID) (*VideoJob, error) {
	query := jobSelect + `
	WHERE j.id = $1 AND j.status = 'done' AND j.file_path IS NOT NULL`

	job, err := scanJob(s.pool.QueryRow(ctx, query, jobID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job %s: %w", jobID, err)
	}

	return job, nil
}

func (s *JobStore) JobsByCompany(ctx context.Context, companyID uuid.UUID) ([]*VideoJob, error) {
	query := jobSelect + `
	WHERE c.id = $1 AND j.status = 'done' AND j.file_path IS NOT NULL
	ORDER BY j.created_at`

	rows, err := s.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query company jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*VideoJob, error) {
	job := &VideoJob{}
	var jobID, companyID string

	err := row.Scan(
		&jobID,
		&job.FilePath,
		&job.VideoURL,
		&job.Platform,
		&companyID,
		&job.CompanyName,
		&job.ViewCount,
		&job.LikeCount,
		&job.CommentCount,
	)
	if err != nil {
		return nil, err
	}

	job.JobID, err = uuid.Parse(jobID)
	if err != nil {
		return nil, fmt.Errorf("invalid job id %q: %w", jobID, err)
	}
	job.CompanyID, err = uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id %q: %w", companyID, err)
	}

	return job, nil
}

func scanJobs(rows pgx.Rows) ([]*VideoJob, error) {
	var jobs []*VideoJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
