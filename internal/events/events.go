package events

import (
	"time"

	"mediastats/pkg/models"
)

const TypeRunCompleted = "run.completed"

type RunEvent struct {
	Type      string         `json:"type"`
	RunID     string         `json:"run_id"`
	Filename  string         `json:"filename"`
	Summary   models.Summary `json:"summary"`
	Artifacts []string       `json:"artifacts"`
	At        time.Time      `json:"at"`
}

func RunCompleted(run *models.Run) RunEvent {
	return RunEvent{
		Type:      TypeRunCompleted,
		RunID:     run.ID,
		Filename:  run.Filename,
		Summary:   run.Summary,
		Artifacts: run.Manifest.Artifacts(),
		At:        run.CreatedAt,
	}
}
