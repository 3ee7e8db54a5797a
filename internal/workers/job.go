// Package workers implements a small generic worker pool used to
// parallelize the indexer's per-line tokenization stage. Forward-index
// construction (term-id assignment, sorting, grouping), trie
// construction and TermBuffer mutation stay single-threaded, downstream
// of this pool.
package workers

import (
	"context"
	"time"
)

// Job carries one unit of work: a value of T in, a value of T out (or an
// error), executed by ExecFn.
type Job[T any] struct {
	Description JobDescriptor
	ExecFn      ExecutionFn[T]
	Args        T
}

// ExecutionFn is the work a Job performs.
type ExecutionFn[T any] func(ctx context.Context, args T) (T, error)

type JobID string
type jobType string
type jobMetadata map[string]interface{}

// JobDescriptor identifies a job for logging and error reporting.
type JobDescriptor struct {
	ID       JobID
	JobType  jobType
	Metadata jobMetadata
}

// Result is what a Job produces once executed. Duration covers exactly
// the time ExecFn ran, so callers can time actual job work rather than
// the time between a result being sent and the consumer picking it up.
type Result[T any] struct {
	Value       T
	Err         error
	Description JobDescriptor
	Duration    time.Duration
}

func (j Job[T]) execute(ctx context.Context) Result[T] {
	start := time.Now()
	value, err := j.ExecFn(ctx, j.Args)
	duration := time.Since(start)
	if err != nil {
		return Result[T]{
			Err:         err,
			Description: j.Description,
			Duration:    duration,
		}
	}

	return Result[T]{
		Value:       value,
		Description: j.Description,
		Duration:    duration,
	}
}
