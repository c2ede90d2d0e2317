// Package queue serializes evaluation jobs through a single-slot FIFO
// worker and tracks memory pressure between jobs, per the kernel's
// concurrency model: exactly one evaluation runs at a time, with cache
// eviction and GC triggered between jobs as memory pressure rises.
package queue

import (
	"context"
	"runtime"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"

	"github.com/dekarrin/scadkernel/internal/cache"
)

// Stage names a point in a job's lifecycle, reported to an optional
// progress callback as the job proceeds.
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageParsing      Stage = "parsing"
	StageAnalyzing    Stage = "analyzing"
	StageEvaluating   Stage = "evaluating"
	StageSerializing  Stage = "serializing"
	StageComplete     Stage = "complete"
)

// Pressure classifies how close the process is to memory exhaustion. The
// queue samples it after each job to decide on cleanup; ShouldChunk samples
// it whenever it is called.
type Pressure int

const (
	PressureLow Pressure = iota
	PressureMedium
	PressureHigh
	PressureCritical
)

// Thresholds configures the byte boundaries between Pressure levels, as
// reported by runtime.MemStats.HeapAlloc.
type Thresholds struct {
	Medium   uint64
	High     uint64
	Critical uint64
}

// DefaultThresholds is a conservative default for a long-running server
// process: 256MB/512MB/1GB heap-alloc boundaries.
var DefaultThresholds = Thresholds{
	Medium:   256 << 20,
	High:     512 << 20,
	Critical: 1 << 30,
}

// DefaultTimeout is the deadline applied to a job when its caller doesn't
// supply one explicitly.
const DefaultTimeout = 30 * time.Second

// ProgressFunc receives stage transitions for one job.
type ProgressFunc func(jobID string, stage Stage)

// Job is one unit of work submitted to the Queue: run is given a context
// carrying the job's deadline and is expected to report its own stage
// transitions through the progress callback it closes over.
type Job struct {
	ID      string
	Timeout time.Duration
	Run     func(ctx context.Context) (interface{}, error)
	Done    chan Result
}

// Result is a completed job's outcome.
type Result struct {
	JobID   string
	Value   interface{}
	Err     error
	Elapsed time.Duration
}

// Queue is a single-worker FIFO job runner with a between-jobs memory
// monitor.
type Queue struct {
	pool       *workerpool.WorkerPool
	caches     *cache.Caches
	thresholds Thresholds
}

// New builds a Queue backed by exactly one worker goroutine, so jobs always
// run one at a time in submission order. caches may be nil if the caller
// has no cache set to purge under pressure.
func New(caches *cache.Caches) *Queue {
	return &Queue{
		pool:       workerpool.New(1),
		caches:     caches,
		thresholds: DefaultThresholds,
	}
}

// Enqueue submits a job and returns immediately with a channel that
// receives its Result once the single worker reaches it and finishes. If
// job.Timeout is zero, DefaultTimeout applies.
func (q *Queue) Enqueue(job Job, progress ProgressFunc) <-chan Result {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	timeout := job.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	out := make(chan Result, 1)

	q.pool.Submit(func() {
		start := time.Now()
		if progress != nil {
			progress(job.ID, StageInitializing)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		val, err := job.Run(ctx)

		out <- Result{JobID: job.ID, Value: val, Err: err, Elapsed: time.Since(start)}
		q.checkPressure()
	})

	return out
}

// StopWait waits for any already-submitted jobs to finish, then shuts the
// queue down. No further jobs may be enqueued afterward.
func (q *Queue) StopWait() {
	q.pool.StopWait()
}

// checkPressure samples the heap between jobs and reacts per the
// configured thresholds: medium does nothing extra, high purges caches and
// suggests chunked evaluation to future callers, critical also forces a GC
// cycle. Jobs already in flight are never aborted on pressure; this only
// affects the next job's starting conditions.
func (q *Queue) checkPressure() {
	switch q.classify() {
	case PressureHigh:
		if q.caches != nil {
			q.caches.Purge()
		}
	case PressureCritical:
		if q.caches != nil {
			q.caches.Purge()
		}
		runtime.GC()
	}
}

// classify reports the current Pressure level from live heap allocation.
func (q *Queue) classify() Pressure {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	switch {
	case stats.HeapAlloc >= q.thresholds.Critical:
		return PressureCritical
	case stats.HeapAlloc >= q.thresholds.High:
		return PressureHigh
	case stats.HeapAlloc >= q.thresholds.Medium:
		return PressureMedium
	default:
		return PressureLow
	}
}

// ShouldChunk reports whether the queue is currently under high enough
// memory pressure that a caller about to evaluate a large script should
// prefer its chunked/streaming evaluation mode over building one monolithic
// mesh in memory.
func (q *Queue) ShouldChunk() bool {
	return q.classify() >= PressureHigh
}
