// Package scadkernel is a headless geometry kernel: it parses a declarative
// 3D-modeling language into a syntax tree, evaluates it against a CSG
// kernel, and produces an indexed triangle mesh. It never touches a
// display; callers drive Parse/Evaluate and do whatever they like with the
// resulting Mesh.
package scadkernel

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dekarrin/scadkernel/internal/cache"
	"github.com/dekarrin/scadkernel/internal/config"
	"github.com/dekarrin/scadkernel/internal/dispatch"
	"github.com/dekarrin/scadkernel/internal/eval"
	"github.com/dekarrin/scadkernel/internal/importer"
	"github.com/dekarrin/scadkernel/internal/kernel"
	"github.com/dekarrin/scadkernel/internal/parse"
	"github.com/dekarrin/scadkernel/internal/queue"
	"github.com/dekarrin/scadkernel/internal/scaderr"
	"github.com/dekarrin/scadkernel/internal/syntax"
)

// ParseResult is Parse's return value: the parsed tree (never nil; after a
// syntax error it holds the statements the parser recovered) plus every
// diagnostic raised along the way.
type ParseResult struct {
	Tree        *syntax.Tree
	Diagnostics scaderr.Diags
}

// Success reports whether parsing completed with no error-level
// diagnostics.
func (r ParseResult) Success() bool {
	return !r.Diagnostics.HasErrors()
}

// Fragments seeds the $fn/$fa/$fs special variables for a job.
type Fragments struct {
	Fn, Fa, Fs float64
}

// Stage names a point in an Evaluate job's lifecycle, reported to an
// optional Options.OnProgress callback as the job proceeds through the
// shared render queue.
type Stage string

const (
	StageInitializing Stage = Stage(queue.StageInitializing)
	StageParsing      Stage = Stage(queue.StageParsing)
	StageAnalyzing    Stage = Stage(queue.StageAnalyzing)
	StageEvaluating   Stage = Stage(queue.StageEvaluating)
	StageSerializing  Stage = Stage(queue.StageSerializing)
	StageComplete     Stage = Stage(queue.StageComplete)
)

// ProgressFunc receives stage transitions for one Evaluate call.
type ProgressFunc func(stage Stage)

// Options configures one Evaluate call.
type Options struct {
	// PreviewMode binds $preview in the initial environment.
	PreviewMode bool
	// DisableParallel forces sequential sub-evaluation. Reserved: the
	// reference kernel has no internal parallelism to disable yet.
	DisableParallel bool
	// TimeoutMS overrides the default 30s job deadline when nonzero.
	TimeoutMS int
	// FragmentDefaults seeds $fn/$fa/$fs; zero fields fall back to
	// ConfigPath's settings, then the kernel's own built-in defaults.
	FragmentDefaults Fragments
	// LibraryPaths extends the import search path, ahead of OPENSCADPATH
	// and any configured system paths.
	LibraryPaths []string
	// BaseDir is the directory relative imports resolve against; defaults
	// to the current working directory.
	BaseDir string
	// ConfigPath, if set, is loaded as a scadkernel.toml config layer
	// beneath these explicit Options.
	ConfigPath string
	// EchoOut receives echo() output; os.Stdout when nil.
	EchoOut interface {
		Write(p []byte) (n int, err error)
	}
	// OnProgress, if set, is called as the job moves through
	// initializing/parsing/analyzing/evaluating/serializing/complete.
	// Stages up to serializing are reported on the queue's worker
	// goroutine; complete is reported on the calling goroutine once the
	// job's result arrives.
	OnProgress ProgressFunc
}

// EvalResult is Evaluate's return value.
type EvalResult struct {
	Mesh        *kernel.Mesh
	Diagnostics scaderr.Diags
	ElapsedMS   int64
}

// Success reports whether evaluation completed with no error-level
// diagnostics.
func (r EvalResult) Success() bool {
	return !r.Diagnostics.HasErrors()
}

// Parse lexes and parses source into a syntax tree. It never panics:
// lexer/parser errors are reported as syntax_error diagnostics, and Tree
// always holds whatever statements could be recovered.
func Parse(source []byte) ParseResult {
	tree, diags := parse.Parse(source)
	return ParseResult{Tree: tree, Diagnostics: diags}
}

// sharedQueue is the process-wide render queue: a single worker serializes
// every Evaluate call and the three memoization caches it shares persist
// across calls instead of being rebuilt and discarded each time, per the
// kernel's single-slot concurrency model.
var (
	sharedQueueOnce sync.Once
	sharedQueueVal  *queue.Queue
	sharedCachesVal *cache.Caches
)

func sharedJobQueue() *queue.Queue {
	sharedQueueOnce.Do(func() {
		sharedCachesVal = cache.New()
		sharedQueueVal = queue.New(sharedCachesVal)
	})
	return sharedQueueVal
}

// evalOutcome is the value carried through the queue's Result.Value for one
// Evaluate job.
type evalOutcome struct {
	mesh  *kernel.Mesh
	diags scaderr.Diags
}

// Evaluate walks tree and builds its geometry, honoring ctx's cancellation
// in addition to the job deadline (opts.TimeoutMS when positive, otherwise
// the 30s default). The
// job is submitted to the shared render queue, which runs exactly one
// evaluation at a time and purges the shared caches under memory pressure
// between jobs. It never propagates a panic or error across this boundary:
// every failure becomes a diagnostic in the returned EvalResult.
func Evaluate(ctx context.Context, tree *syntax.Tree, opts Options) EvalResult {
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := 30 * time.Second
	if opts.TimeoutMS > 0 {
		timeout = time.Duration(opts.TimeoutMS) * time.Millisecond
	}

	cfg := config.Config{}
	if opts.ConfigPath != "" {
		if loaded, err := config.Load(opts.ConfigPath); err == nil {
			cfg = loaded
		}
	}
	merged := cfg.Merge(opts.LibraryPaths, config.Fragments{
		Fn: opts.FragmentDefaults.Fn, Fa: opts.FragmentDefaults.Fa, Fs: opts.FragmentDefaults.Fs,
	}).FragmentDefaults.FillDefaults()

	baseDir := opts.BaseDir
	if baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			baseDir = wd
		}
	}

	resolver := importer.NewResolver(baseDir)
	resolver.LibraryPaths = append(opts.LibraryPaths, cfg.LibraryPaths...)
	ref := kernel.NewReference()
	d := dispatch.New(ref)

	env := syntax.NewEnv()
	env.Bind("$fn", syntax.NumberOf(merged.Fn))
	env.Bind("$fa", syntax.NumberOf(merged.Fa))
	env.Bind("$fs", syntax.NumberOf(merged.Fs))
	env.Bind("$preview", syntax.BoolOf(opts.PreviewMode))

	report := func(s Stage) {
		if opts.OnProgress != nil {
			opts.OnProgress(s)
		}
	}

	q := sharedJobQueue()
	job := queue.Job{
		ID:      uuid.NewString(),
		Timeout: timeout,
		Run: func(qctx context.Context) (interface{}, error) {
			runCtx, cancel := context.WithCancel(qctx)
			defer cancel()
			if callerDone := ctx.Done(); callerDone != nil {
				go func() {
					select {
					case <-callerDone:
						cancel()
					case <-runCtx.Done():
					}
				}()
			}

			report(StageParsing)
			ev := eval.New(runCtx, d, sharedCachesVal)
			ev.Importer = resolver
			if opts.EchoOut != nil {
				ev.EchoOut = opts.EchoOut
			}

			report(StageAnalyzing)
			var mesh *kernel.Mesh
			if tree != nil {
				report(StageEvaluating)
				h := ev.EvalTree(tree, env)
				if h != nil {
					report(StageSerializing)
					m := ref.ToMesh(h)
					mesh = &m
				}
			}
			return evalOutcome{mesh: mesh, diags: ev.Diags}, nil
		},
	}

	done := q.Enqueue(job, func(id string, s queue.Stage) {
		report(Stage(s))
	})

	result := <-done
	out, _ := result.Value.(evalOutcome)
	report(StageComplete)

	return EvalResult{
		Mesh:        out.mesh,
		Diagnostics: out.diags,
		ElapsedMS:   time.Since(start).Milliseconds(),
	}
}
