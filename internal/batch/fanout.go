// Package batch builds several knowledge bases at once. Jobs that would
// write the same output are refused, so the jobs that do run never share
// files and need no coordination beyond a concurrency limit.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/kbgraph/internal/builder"
)

// Job names one build.
type Job struct {
	KB     string
	Format string
}

// String returns "kb/format".
func (j Job) String() string {
	return j.KB + "/" + j.Format
}

// JobResult holds the outcome of a single Job.
type JobResult struct {
	Job    Job
	Result *builder.Result
	Err    error
}

// OutputConflictError reports a job refused because an earlier job in the
// same run writes the same output.
type OutputConflictError struct {
	Job     Job
	Earlier Job
	Path    string
}

func (e *OutputConflictError) Error() string {
	return fmt.Sprintf("%s: output %s is already written by %s", e.Job, e.Path, e.Earlier)
}

// OutputFunc resolves the file a job writes. Jobs it cannot resolve are
// left to fail in their own build.
type OutputFunc func(Job) (string, error)

// BuildFunc runs one build. *builder.Builder's Build method satisfies it.
type BuildFunc func(ctx context.Context, kbName, format string) (*builder.Result, error)

// FanOut dispatches jobs in parallel and collects their results.
type FanOut struct {
	build      BuildFunc
	limit      int
	onProgress func(ProgressEvent)
	outputOf   OutputFunc
}

// NewFanOut creates a FanOut. limit <= 0 uses GOMAXPROCS. onProgress is
// called from worker goroutines; it may be nil.
func NewFanOut(build BuildFunc, limit int, onProgress func(ProgressEvent)) *FanOut {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &FanOut{build: build, limit: limit, onProgress: onProgress}
}

// WithOutputs makes Run refuse jobs whose output collides with an earlier
// job's. It returns f.
func (f *FanOut) WithOutputs(outputOf OutputFunc) *FanOut {
	f.outputOf = outputOf
	return f
}

// Run builds every job and returns one JobResult per job, in job order.
// A failing job does not cancel the others: all jobs run to completion and
// the first error (in completion order) is returned alongside the results.
func (f *FanOut) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(f.limit)

	for i, job := range jobs {
		results[i].Job = job
		f.emit(ProgressEvent{Job: job, Status: ProgressPending})
	}

	conflicts := f.conflicts(jobs)
	var firstConflict error
	for i, job := range jobs {
		if err := conflicts[i]; err != nil {
			results[i].Err = err
			f.emit(ProgressEvent{Job: job, Status: ProgressFailed, Message: err.Error()})
			if firstConflict == nil {
				firstConflict = err
			}
			continue
		}
		g.Go(func() error {
			f.emit(ProgressEvent{Job: job, Status: ProgressWorking})

			res, err := f.build(ctx, job.KB, job.Format)
			if err != nil {
				results[i].Err = err
				f.emit(ProgressEvent{Job: job, Status: ProgressFailed, Message: err.Error()})
				return err
			}

			results[i].Result = res
			f.emit(ProgressEvent{Job: job, Status: ProgressComplete})
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = firstConflict
	}
	return results, err
}

// conflicts maps the index of every job that shares its output with an
// earlier job to an *OutputConflictError.
func (f *FanOut) conflicts(jobs []Job) map[int]error {
	if f.outputOf == nil {
		return nil
	}
	out := make(map[int]error)
	claimed := make(map[string]Job)
	for i, job := range jobs {
		path, err := f.outputOf(job)
		if err != nil {
			continue
		}
		if earlier, ok := claimed[path]; ok {
			out[i] = &OutputConflictError{Job: job, Earlier: earlier, Path: path}
			continue
		}
		claimed[path] = job
	}
	return out
}

// emit sends a progress event if a callback is registered.
func (f *FanOut) emit(ev ProgressEvent) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
