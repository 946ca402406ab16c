package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context) error { return nil }

func TestExecute_AllStepsSucceed(t *testing.T) {
	var order []string
	step := func(name string) Step {
		return Step{
			Name: name,
			Run: func(ctx context.Context) error {
				order = append(order, name)
				return nil
			},
			Undo: func(ctx context.Context) error {
				t.Fatalf("undo of %s must not run on success", name)
				return nil
			},
		}
	}

	s := New(zerolog.Nop())
	err := s.Execute(context.Background(), step("first"), step("second"), step("third"))

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestExecute_FailureCompensatesInReverseOrder(t *testing.T) {
	var undone []string
	step := func(name string) Step {
		return Step{
			Name: name,
			Run:  noop,
			Undo: func(ctx context.Context) error {
				undone = append(undone, name)
				return nil
			},
		}
	}
	cause := errors.New("upload refused")

	s := New(zerolog.Nop())
	err := s.Execute(context.Background(),
		step("persist"),
		step("upload"),
		Step{Name: "enrich", Run: func(ctx context.Context) error { return cause }},
	)

	require.Error(t, err)
	assert.Equal(t, []string{"upload", "persist"}, undone)

	var sagaErr *Error
	require.ErrorAs(t, err, &sagaErr)
	assert.Equal(t, "enrich", sagaErr.Step)
	assert.ErrorIs(t, err, cause)
}

func TestExecute_FailingStepIsNotCompensated(t *testing.T) {
	failUndoRan := false

	s := New(zerolog.Nop())
	err := s.Execute(context.Background(),
		Step{Name: "persist", Run: noop, Undo: noop},
		Step{
			Name: "upload",
			Run:  func(ctx context.Context) error { return errors.New("boom") },
			Undo: func(ctx context.Context) error {
				failUndoRan = true
				return nil
			},
		},
	)

	require.Error(t, err)
	assert.False(t, failUndoRan, "the failing step itself must not be undone")
}

func TestExecute_NilUndoIsSkipped(t *testing.T) {
	persistUndone := false

	s := New(zerolog.Nop())
	err := s.Execute(context.Background(),
		Step{Name: "persist", Run: noop, Undo: func(ctx context.Context) error {
			persistUndone = true
			return nil
		}},
		Step{Name: "read-cohort", Run: noop},
		Step{Name: "commit", Run: func(ctx context.Context) error { return errors.New("commit failed") }},
	)

	require.Error(t, err)
	assert.True(t, persistUndone)
}

func TestExecute_CompensationErrorsNeverMaskCause(t *testing.T) {
	cause := errors.New("verification unavailable")
	undoErr := errors.New("bucket gone")

	s := New(zerolog.Nop())
	err := s.Execute(context.Background(),
		Step{Name: "persist", Run: noop, Undo: func(ctx context.Context) error { return undoErr }},
		Step{Name: "verify", Run: func(ctx context.Context) error { return cause }},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var sagaErr *Error
	require.ErrorAs(t, err, &sagaErr)
	assert.ErrorIs(t, sagaErr.CompensationErrs, undoErr)
	assert.NotErrorIs(t, err, undoErr)
}

func TestCompensate_AttemptsEveryUndoDespiteFailures(t *testing.T) {
	var undone []string
	firstUndoErr := errors.New("first undo failed")

	s := New(zerolog.Nop())
	err := s.Execute(context.Background(),
		Step{Name: "a", Run: noop, Undo: func(ctx context.Context) error {
			undone = append(undone, "a")
			return nil
		}},
		Step{Name: "b", Run: noop, Undo: func(ctx context.Context) error {
			undone = append(undone, "b")
			return firstUndoErr
		}},
		Step{Name: "c", Run: func(ctx context.Context) error { return errors.New("fail") }},
	)

	require.Error(t, err)
	assert.Equal(t, []string{"b", "a"}, undone)

	var sagaErr *Error
	require.ErrorAs(t, err, &sagaErr)
	assert.ErrorIs(t, sagaErr.CompensationErrs, firstUndoErr)
}

func TestExecute_FirstStepFailureLeavesNothingToUndo(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.Execute(context.Background(),
		Step{Name: "persist", Run: func(ctx context.Context) error { return errors.New("db down") }, Undo: noop},
	)

	require.Error(t, err)
	var sagaErr *Error
	require.ErrorAs(t, err, &sagaErr)
	assert.Equal(t, "persist", sagaErr.Step)
	assert.NoError(t, sagaErr.CompensationErrs)
}
