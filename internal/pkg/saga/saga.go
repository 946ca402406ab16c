// Package saga runs an ordered sequence of side-effecting steps with
// reverse-order compensation. Each step carries an optional undo closure;
// when a later step fails, the undo closures of every completed step are
// executed last-in-first-out. Compensation is best effort: its errors are
// logged and collected but never replace the original failure.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Step is one unit of work in a pipeline run.
type Step struct {
	// Name identifies the step in logs and errors.
	Name string
	// Run performs the step's side effect.
	Run func(ctx context.Context) error
	// Undo reverses the step's side effect. A nil Undo marks a step that
	// needs no compensation (pure reads, final commits).
	Undo func(ctx context.Context) error
}

// Error reports a failed run: the step that failed, its cause, and any
// errors collected while compensating. Unwrap exposes the cause so callers
// can match on their own sentinel errors.
type Error struct {
	Step             string
	Cause            error
	CompensationErrs error
}

func (e *Error) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Saga executes steps in order and compensates on failure.
type Saga struct {
	logger    zerolog.Logger
	completed []Step
}

// New creates a Saga logging compensation outcomes to the given logger.
func New(logger zerolog.Logger) *Saga {
	return &Saga{logger: logger}
}

// Execute runs the steps in order. On the first failure it compensates all
// previously completed steps in reverse order and returns an *Error whose
// cause is the failing step's error.
func (s *Saga) Execute(ctx context.Context, steps ...Step) error {
	for _, step := range steps {
		if err := step.Run(ctx); err != nil {
			compErr := s.Compensate(ctx)
			return &Error{
				Step:             step.Name,
				Cause:            err,
				CompensationErrs: compErr,
			}
		}
		s.completed = append(s.completed, step)
	}
	return nil
}

// Compensate undoes every completed step, most recent first. All undo
// closures are attempted even when one fails; the collected errors are
// joined and returned for logging, never thrown past the original failure.
func (s *Saga) Compensate(ctx context.Context) error {
	var errs error
	for i := len(s.completed) - 1; i >= 0; i-- {
		step := s.completed[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(ctx); err != nil {
			s.logger.Error().Err(err).Str("step", step.Name).Msg("Compensation failed")
			errs = errors.Join(errs, fmt.Errorf("undo %s: %w", step.Name, err))
		}
	}
	s.completed = s.completed[:0]
	return errs
}
