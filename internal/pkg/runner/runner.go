// Package runner executes tasks concurrently and joins them.
//
// A Task only describes a unit of work; the Runner is the vehicle that
// schedules it. Neither knows about the other's internals.
package runner

import (
	"context"
	"runtime/debug"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Task is a named unit of work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context) error
}

func (f TaskFunc) Name() string { return f.TaskName }

func (f TaskFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// Runner starts tasks on their own goroutines. It never cancels the tasks it
// runs: a failing task does not stop its siblings.
type Runner struct {
	group  errgroup.Group
	logger zerolog.Logger
}

// New creates a Runner that logs task lifecycle through logger.
func New(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Go starts task with ctx. A panic inside the task is recovered and reported
// by Wait.
func (r *Runner) Go(ctx context.Context, task Task) {
	r.group.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().
					Str("task", task.Name()).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("task panicked")
				err = errors.Errorf("task %s panicked: %v", task.Name(), rec)
			}
		}()

		r.logger.Debug().Str("task", task.Name()).Msg("task started")
		if err := task.Run(ctx); err != nil {
			return errors.Wrapf(err, "task %s", task.Name())
		}
		r.logger.Debug().Str("task", task.Name()).Msg("task finished")
		return nil
	})
}

// Wait blocks until every started task has returned and reports the first
// error, if any.
func (r *Runner) Wait() error {
	return r.group.Wait()
}
