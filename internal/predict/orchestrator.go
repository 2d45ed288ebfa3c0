// Package predict drives one prediction at a time: validate, submit,
// reshape the result for display.
package predict

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/smartpaddy/advisor/pkg/client"
	"github.com/smartpaddy/advisor/pkg/domain"
)

// State is the orchestrator's position in the submit cycle.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrBusy is returned by Begin while a submission is outstanding.
var ErrBusy = errors.New("predict: a submission is already in flight")

// Predictor is the part of the API client the orchestrator needs.
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error)
}

// Submission is a validated request tagged with its cycle id.
type Submission struct {
	ID      uuid.UUID
	Request domain.PredictionRequest
}

// Outcome is what came back for a Submission.
type Outcome struct {
	ID     uuid.UUID
	Result *domain.PredictionResult
	Err    error
}

// Run performs the single network attempt for sub.
func Run(ctx context.Context, p Predictor, sub Submission) Outcome {
	res, err := p.Predict(ctx, sub.Request)
	return Outcome{ID: sub.ID, Result: res, Err: err}
}

// Orchestrator owns the request, result, view and error of the current
// cycle. The zero value is Idle.
type Orchestrator struct {
	state   State
	cycle   uuid.UUID
	request *domain.PredictionRequest
	result  *domain.PredictionResult
	view    *domain.StageView
	err     *client.Error
}

// State returns the current state.
func (o *Orchestrator) State() State { return o.state }

// Busy reports whether the submit control must be disabled.
func (o *Orchestrator) Busy() bool { return o.state == Submitting }

// Begin validates form and starts a new cycle. On a validation error or
// ErrBusy the state is left as it was and no request may be sent.
func (o *Orchestrator) Begin(form Form) (Submission, error) {
	if o.state == Submitting {
		return Submission{}, ErrBusy
	}
	req, err := Parse(form)
	if err != nil {
		return Submission{}, err
	}
	o.state = Submitting
	o.cycle = uuid.New()
	o.request = &req
	o.result = nil
	o.view = nil
	o.err = nil
	return Submission{ID: o.cycle, Request: req}, nil
}

// Resolve applies the outcome of cycle id. It returns false, changing
// nothing, when id is not the live cycle.
func (o *Orchestrator) Resolve(id uuid.UUID, result *domain.PredictionResult, err error) bool {
	if o.state != Submitting || id == uuid.Nil || id != o.cycle {
		return false
	}
	if err == nil && result == nil {
		err = &client.Error{Message: "Prediction failed"}
	}
	if err != nil {
		o.state = Failed
		o.err = client.AsError(err)
		return true
	}
	view := domain.Project(*result, o.request)
	o.state = Succeeded
	o.result = result
	o.view = &view
	return true
}

// Apply is Resolve for an Outcome.
func (o *Orchestrator) Apply(out Outcome) bool {
	return o.Resolve(out.ID, out.Result, out.Err)
}

// Detach forgets the current cycle, as when the view is unmounted. Any
// outcome still in flight will be discarded.
func (o *Orchestrator) Detach() {
	*o = Orchestrator{}
}

// View returns the stage projection of the last successful cycle.
func (o *Orchestrator) View() (domain.StageView, bool) {
	if o.state != Succeeded || o.view == nil {
		return domain.StageView{}, false
	}
	return *o.view, true
}

// Result returns the raw result of the last successful cycle.
func (o *Orchestrator) Result() *domain.PredictionResult {
	if o.state != Succeeded {
		return nil
	}
	return o.result
}

// Request returns the request of the current cycle, if any.
func (o *Orchestrator) Request() *domain.PredictionRequest {
	return o.request
}

// Err returns the failure of the last cycle when Failed.
func (o *Orchestrator) Err() *client.Error {
	if o.state != Failed {
		return nil
	}
	return o.err
}
