package web2pdf

import (
	"strings"
	"time"
)

// Stage names one step of the render pipeline.
type Stage string

// Pipeline stages, in execution order.
const (
	StageValidate    Stage = "validate"
	StageAdmit       Stage = "admit"
	StageLaunch      Stage = "launch"
	StagePage        Stage = "page"
	StageSeed        Stage = "seed"
	StageLoad        Stage = "load"
	StageReadiness   Stage = "readiness"
	StageSettle      Stage = "settle"
	StagePostProcess Stage = "postprocess"
	StagePrint       Stage = "print"
	StageTeardown    Stage = "teardown"
)

// OutcomeKind classifies how a stage ended.
type OutcomeKind int

const (
	// Success means the stage did everything it set out to do.
	Success OutcomeKind = iota
	// DegradedContinue means the stage failed but the render proceeds with
	// whatever browser state exists.
	DegradedContinue
	// FatalAbort means the render stops; resources are released before the
	// error is returned.
	FatalAbort
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case DegradedContinue:
		return "degraded"
	case FatalAbort:
		return "fatal"
	default:
		return "unknown"
	}
}

// StageOutcome is the result of running one stage.
type StageOutcome struct {
	Stage    Stage
	Kind     OutcomeKind
	Reason   string
	Err      error
	Duration time.Duration
}

func succeeded(stage Stage) StageOutcome {
	return StageOutcome{Stage: stage, Kind: Success}
}

func degraded(stage Stage, err error) StageOutcome {
	return StageOutcome{Stage: stage, Kind: DegradedContinue, Reason: reasonOf(err), Err: err}
}

func aborted(stage Stage, err error) StageOutcome {
	return StageOutcome{Stage: stage, Kind: FatalAbort, Reason: reasonOf(err), Err: err}
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Diagnostics is the ordered list of outcomes recorded during one render.
type Diagnostics []StageOutcome

// Degraded returns the stages that ended in DegradedContinue.
func (d Diagnostics) Degraded() []Stage {
	var stages []Stage
	for _, o := range d {
		if o.Kind == DegradedContinue {
			stages = append(stages, o.Stage)
		}
	}
	return stages
}

// DegradedHeader formats degraded stages for the X-Render-Degraded header.
func (d Diagnostics) DegradedHeader() string {
	return strings.Join(stageNames(d.Degraded()), ",")
}

// Outcome returns the recorded outcome for stage, if any.
func (d Diagnostics) Outcome(stage Stage) (StageOutcome, bool) {
	for _, o := range d {
		if o.Stage == stage {
			return o, true
		}
	}
	return StageOutcome{}, false
}
