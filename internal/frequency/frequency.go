// Package frequency reports a periodic event rate and a final job
// outcome summary, both driven off the same indexer worker-pool loop:
// one line consumed per iteration, one job outcome recorded per
// iteration.
package frequency

import (
	"log/slog"
	"time"
)

// Frequency accumulates a count since LastTime and logs the average rate
// once Interval has elapsed; it also accumulates every recorded job's
// outcome and timing for a final summary. Touched only by the indexer's
// single-threaded consumer goroutine, so it needs no locking.
type Frequency struct {
	Interval time.Duration
	count    int
	total    int
	LastTime time.Time

	totalJobs          int
	successfulJobs     int
	failedJobs         int
	totalExecutionTime time.Duration
	executionCount     int
}

// Add folds count more events into the current window.
func (f *Frequency) Add(count int) {
	f.count += count
	f.total += count
}

// Check logs and resets the window if Interval has elapsed since
// LastTime; otherwise it is a no-op.
func (f *Frequency) Check(log *slog.Logger) {
	now := time.Now()
	elapsed := now.Sub(f.LastTime)
	if elapsed >= f.Interval {
		average := float64(f.count) / elapsed.Seconds()
		log.Info("line rate", "count", f.total, "lines_per_sec", average)
		f.count = 0
		f.LastTime = now
	}
}

// RecordSuccess folds a successfully processed job's timing into the
// running summary.
func (f *Frequency) RecordSuccess(duration time.Duration) {
	f.totalJobs++
	f.successfulJobs++
	f.totalExecutionTime += duration
	f.executionCount++
}

// RecordFailure folds a failed job's timing into the running summary.
func (f *Frequency) RecordFailure(duration time.Duration) {
	f.totalJobs++
	f.failedJobs++
	f.totalExecutionTime += duration
	f.executionCount++
}

// Summary logs a single line covering every job recorded via
// RecordSuccess/RecordFailure: totals, a success/failure split, and the
// average per-job execution time.
func (f *Frequency) Summary(log *slog.Logger) {
	avgExecTime := time.Duration(0)
	if f.executionCount > 0 {
		avgExecTime = f.totalExecutionTime / time.Duration(f.executionCount)
	}

	log.Info("indexing summary",
		"total_jobs", f.totalJobs,
		"successful_jobs", f.successfulJobs,
		"failed_jobs", f.failedJobs,
		"avg_execution_time", avgExecTime,
	)
}
