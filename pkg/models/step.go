package models

// StepStatus tells whether a report step wrote its artifact.
type StepStatus string

const (
	StepProduced StepStatus = "produced"
	StepSkipped  StepStatus = "skipped"
)

// StepResult is one manifest entry.
type StepResult struct {
	Step     int        `json:"step"`
	Artifact string     `json:"artifact"`
	Status   StepStatus `json:"status"`
	Reason   string     `json:"reason,omitempty"`
}

func Produced(step int, artifact string) StepResult {
	return StepResult{Step: step, Artifact: artifact, Status: StepProduced}
}

func Skipped(step int, artifact, reason string) StepResult {
	return StepResult{Step: step, Artifact: artifact, Status: StepSkipped, Reason: reason}
}

// Manifest lists the outcome of every report step in step order.
type Manifest []StepResult

// Artifacts returns the file names that were actually written.
func (m Manifest) Artifacts() []string {
	out := make([]string, 0, len(m))
	for _, r := range m {
		if r.Status == StepProduced {
			out = append(out, r.Artifact)
		}
	}
	return out
}
