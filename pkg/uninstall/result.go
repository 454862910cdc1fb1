package uninstall

import "strings"

type Status string

const (
	StatusOK       Status = "ok"
	StatusAbsent   Status = "absent"
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusDeclined Status = "declined"
	StatusPlanned  Status = "planned"
	StatusSkipped  Status = "skipped"
)

const (
	StageShutdown    = "shutdown"
	StageArtifacts   = "artifacts"
	StageEnvironment = "environment"
	StageData        = "data"
)

// StageResult is what a stage reports instead of returning an error.
type StageResult struct {
	Stage    string
	Status   Status
	Message  string
	Details  []string
	Warnings []string
	Err      error
}

func (r *StageResult) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *StageResult) detail(msg string) {
	r.Details = append(r.Details, msg)
}

type Report struct {
	Stages []StageResult
}

func (r Report) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// Failed reports whether any stage failed. Warnings and declines are not failures.
func (r Report) Failed() bool {
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Interrupted reports whether cancellation left stages unattempted.
func (r Report) Interrupted() bool {
	for _, s := range r.Stages {
		if s.Status == StatusSkipped {
			return true
		}
	}
	return false
}

func (r Report) FailedStages() string {
	var names []string
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			names = append(names, s.Stage)
		}
	}
	return strings.Join(names, ", ")
}
