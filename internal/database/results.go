package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/analysis"
)

// ResultStore persists AnalysisResult documents in SQLite. The full result is
// stored as a JSON document; identity and status columns are lifted out for
// lookups. Uniqueness of (company_name, video_filename) lives in the schema,
// so a duplicate insert is a no-op rather than a race.
type ResultStore struct {
	conn *sql.DB
}

func NewResultStore(path string) (*ResultStore, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}

	store := &ResultStore{conn: conn}
	if err := store.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *ResultStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS analysis_results (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		company_name TEXT NOT NULL,
		video_filename TEXT NOT NULL,
		job_id TEXT,
		status TEXT NOT NULL,
		error_message TEXT,
		document TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE(company_name, video_filename)
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_results_job_id ON analysis_results(job_id);
	CREATE INDEX IF NOT EXISTS idx_analysis_results_company_id ON analysis_results(company_id);
	`

	_, err := s.conn.Exec(query)
	return err
}

func (s *ResultStore) Close() error {
	return s.conn.Close()
}

// Insert writes the result if no record exists for its identity key. It
// reports whether the row was actually inserted; false means another record
// already holds the (company_name, video_filename) identity.
func (s *ResultStore) Insert(ctx context.Context, result *analysis.AnalysisResult) (bool, error) {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	document, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	query := `
		INSERT INTO analysis_results (
			id, company_id, company_name, video_filename, job_id,
			status, error_message, document, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_name, video_filename) DO NOTHING`

	res, err := s.conn.ExecContext(ctx, query,
		result.ID,
		result.CompanyID,
		result.CompanyName,
		result.VideoFilename,
		result.JobID,
		result.Status,
		result.ErrorMessage,
		string(document),
		result.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert analysis result: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (s *ResultStore) Exists(ctx context.Context, companyName, videoFilename string) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM analysis_results WHERE company_name = ? AND video_filename = ?`,
		companyName, videoFilename,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check result existence: %w", err)
	}
	return count > 0, nil
}

func (s *ResultStore) ExistsJob(ctx context.Context, jobID string) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM analysis_results WHERE job_id = ?`,
		jobID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check job existence: %w", err)
	}
	return count > 0, nil
}

// GetByID returns the stored result, or nil when no record matches.
func (s *ResultStore) GetByID(ctx context.Context, id string) (*analysis.AnalysisResult, error) {
	return s.scanDocument(s.conn.QueryRowContext(ctx,
		`SELECT document FROM analysis_results WHERE id = ?`, id))
}

func (s *ResultStore) GetByIdentity(ctx context.Context, companyName, videoFilename string) (*analysis.AnalysisResult, error) {
	return s.scanDocument(s.conn.QueryRowContext(ctx,
		`SELECT document FROM analysis_results WHERE company_name = ? AND video_filename = ?`,
		companyName, videoFilename))
}

func (s *ResultStore) ListByCompany(ctx context.Context, companyID string) ([]*analysis.AnalysisResult, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT document FROM analysis_results WHERE company_id = ? ORDER BY created_at`,
		companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*analysis.AnalysisResult
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		result := &analysis.AnalysisResult{}
		if err := json.Unmarshal([]byte(document), result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result document: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

func (s *ResultStore) scanDocument(row *sql.Row) (*analysis.AnalysisResult, error) {
	var document string
	err := row.Scan(&document)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}

	result := &analysis.AnalysisResult{}
	if err := json.Unmarshal([]byte(document), result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result document: %w", err)
	}

	return result, nil
}
