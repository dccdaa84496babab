package updater

import (
	"context"

	"github.com/oshokin/desktop-updater/internal/logger"
)

// StepStatus classifies how a pipeline step ended.
type StepStatus int

const (
	// StepOk means the step completed fully.
	StepOk StepStatus = iota
	// StepDegraded means a best-effort step partially failed; the pipeline continued.
	StepDegraded
	// StepFailed means the step failed outright.
	StepFailed
)

// String returns the log representation of the status.
func (s StepStatus) String() string {
	switch s {
	case StepOk:
		return "ok"
	case StepDegraded:
		return "degraded"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepOutcome is the tagged result of one pipeline step.
type StepOutcome struct {
	// Step is the step name (wait_for_exit, backup, apply, ...).
	Step string
	// Status classifies the result.
	Status StepStatus
	// Reason explains degradations and failures.
	Reason string
}

// Report aggregates step outcomes of one session. Errors inside the detached
// pipeline are never surfaced to a caller, so the report and the log output
// are the only observability the pipeline has.
type Report struct {
	// Outcomes lists step results in execution order.
	Outcomes []StepOutcome
}

// Ok records a fully successful step.
func (r *Report) Ok(step string) {
	r.Outcomes = append(r.Outcomes, StepOutcome{Step: step, Status: StepOk})
}

// Degraded records a partially failed best-effort step.
func (r *Report) Degraded(step, reason string) {
	r.Outcomes = append(r.Outcomes, StepOutcome{Step: step, Status: StepDegraded, Reason: reason})
}

// Failed records an outright step failure.
func (r *Report) Failed(step, reason string) {
	r.Outcomes = append(r.Outcomes, StepOutcome{Step: step, Status: StepFailed, Reason: reason})
}

// Degradations returns every outcome that is not fully ok.
func (r *Report) Degradations() []StepOutcome {
	var degraded []StepOutcome

	for _, outcome := range r.Outcomes {
		if outcome.Status != StepOk {
			degraded = append(degraded, outcome)
		}
	}

	return degraded
}

// Log writes the per-step outcomes at the end of the pipeline.
func (r *Report) Log(ctx context.Context) {
	for _, outcome := range r.Outcomes {
		if outcome.Status == StepOk {
			logger.InfoKV(ctx, "Step completed", "step", outcome.Step, "status", outcome.Status.String())
			continue
		}

		logger.WarnKV(ctx, "Step did not complete cleanly",
			"step", outcome.Step, "status", outcome.Status.String(), "reason", outcome.Reason)
	}
}
