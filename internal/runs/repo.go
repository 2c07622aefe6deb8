package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mediastats/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Create stores run, filling in ID and CreatedAt when they are empty.
func (r *Repo) Create(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	manifest, err := json.Marshal(run.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO runs (id, filename, total_rows, summary, manifest, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Filename, run.Summary.TotalRows, string(summary), string(manifest), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when no run has that id.
func (r *Repo) GetByID(ctx context.Context, id string) (*models.Run, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, filename, summary, manifest, created_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

// List returns runs newest first.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]models.Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, filename, summary, manifest, created_at
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := make([]models.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Each calls fn for every stored run, oldest first, stopping at the first error.
func (r *Repo) Each(ctx context.Context, fn func(models.Run) error) error {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, filename, summary, manifest, created_at
		FROM runs
		ORDER BY created_at, id
	`)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return fmt.Errorf("scan run row: %w", err)
		}
		if err := fn(*run); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var (
		run      models.Run
		summary  string
		manifest string
		ts       time.Time
	)
	if err := s.Scan(&run.ID, &run.Filename, &summary, &manifest, &ts); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if err := json.Unmarshal([]byte(manifest), &run.Manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	run.CreatedAt = ts.UTC()
	return &run, nil
}
