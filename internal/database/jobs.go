package database

import (
	"context"
	"fmt"
	"time"
)

// JobRow is the input for recording a processed upload. It never carries
// audio or text, only metadata about the request.
type JobRow struct {
	RequestID      string
	Filename       string
	MimeType       string
	SizeBytes      int64
	TargetLanguage string
	SourceLanguage string
	Status         string // "ok" or "error"
	ErrorKind      string
	Chunks         int
	DurationMs     int
}

// JobAPI is the job representation for API responses.
type JobAPI struct {
	ID             int64     `json:"id"`
	RequestID      string    `json:"request_id,omitempty"`
	Filename       string    `json:"filename"`
	MimeType       string    `json:"mime_type,omitempty"`
	SizeBytes      int64     `json:"size_bytes"`
	TargetLanguage string    `json:"target_language"`
	SourceLanguage string    `json:"source_language,omitempty"`
	Status         string    `json:"status"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	Chunks         int       `json:"chunks"`
	DurationMs     int       `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsertJob records one processed upload and returns its id.
func (db *DB) InsertJob(ctx context.Context, row JobRow) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO jobs (request_id, filename, mime_type, size_bytes, target_language,
			source_language, status, error_kind, chunks, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		row.RequestID, row.Filename, row.MimeType, row.SizeBytes, row.TargetLanguage,
		row.SourceLanguage, row.Status, row.ErrorKind, row.Chunks, row.DurationMs,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

// ListJobs returns jobs newest first, with the total count for pagination.
func (db *DB) ListJobs(ctx context.Context, limit, offset int) ([]JobAPI, int, error) {
	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM jobs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, request_id, filename, mime_type, size_bytes, target_language,
			source_language, status, error_kind, chunks, duration_ms, created_at
		FROM jobs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []JobAPI{}
	for rows.Next() {
		var j JobAPI
		if err := rows.Scan(&j.ID, &j.RequestID, &j.Filename, &j.MimeType, &j.SizeBytes, &j.TargetLanguage,
			&j.SourceLanguage, &j.Status, &j.ErrorKind, &j.Chunks, &j.DurationMs, &j.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}
