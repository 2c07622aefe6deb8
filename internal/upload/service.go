// Package upload accepts catalog CSV uploads, runs the analysis into the
// shared output directory and records the run.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mediastats/internal/analysis"
	"mediastats/internal/events"
	"mediastats/internal/runs"
	"mediastats/pkg/models"
)

// Service runs one analysis at a time; every run rewrites OutputDir.
type Service struct {
	Analyzer  *analysis.Analyzer
	Runs      *runs.Repo  // optional
	Hub       *events.Hub // optional
	UploadDir string
	OutputDir string
	Log       *zap.Logger

	mu sync.Mutex
}

// Outcome is a finished run plus the images now present in OutputDir.
type Outcome struct {
	Run    *models.Run
	Images []string
}

// Process stores src under UploadDir as the sanitized filename, clears
// OutputDir, analyzes the stored file and returns the result.
func (s *Service) Process(ctx context.Context, filename string, src io.Reader) (*Outcome, error) {
	log := s.logger()
	name := SecureFilename(filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dir := range []string{s.UploadDir, s.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure dir %s: %w", dir, err)
		}
	}

	path := filepath.Join(s.UploadDir, name)
	if err := saveFile(path, src); err != nil {
		return nil, err
	}
	if err := ClearDir(s.OutputDir); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.Analyzer.RunFile(path, s.OutputDir)
	if err != nil {
		log.Warn("analysis failed", zap.String("file", name), zap.Error(err))
		return nil, err
	}

	images, err := ListImages(s.OutputDir)
	if err != nil {
		return nil, err
	}

	run := &models.Run{
		ID:        uuid.NewString(),
		Filename:  name,
		Summary:   res.Summary,
		Manifest:  res.Manifest,
		CreatedAt: time.Now().UTC(),
	}
	log.Info("analysis finished",
		zap.String("run_id", run.ID),
		zap.String("file", name),
		zap.Int("rows", run.Summary.TotalRows),
		zap.Int("images", len(images)),
		zap.Duration("took", time.Since(start)))

	if s.Runs != nil {
		if err := s.Runs.Create(ctx, run); err != nil {
			// the charts are already on disk; losing history is not fatal
			log.Error("record run", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	if s.Hub != nil {
		s.Hub.BroadcastJSON(events.RunCompleted(run))
	}

	return &Outcome{Run: run, Images: images}, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func saveFile(path string, src io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return fmt.Errorf("save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close upload: %w", err)
	}
	return nil
}

// ClearDir removes every entry inside dir, keeping dir itself.
func ClearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clear output dir: %w", err)
		}
	}
	return nil
}

// ListImages returns the PNG file names in dir in lexicographic order.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list output dir: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".png") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
