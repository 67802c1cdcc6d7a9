// Package executor turns one job.Job into one job.Result: it owns a
// private temp workspace, runs an optional compile phase and a bounded
// execute phase, and classifies the outcome into the fixed status
// taxonomy. It never returns an error for a job-level failure — those are
// always encoded in the returned Result — so the worker loop can treat
// Execute as infallible from its perspective.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/execq/execq/internal/xlog"
	"github.com/execq/execq/pkg/job"
)

// compileTimeout is the fixed cap on the compile phase (§4.3 step 3).
const compileTimeout = 30 * time.Second

// Executor runs jobs against a language recipe registry.
type Executor struct {
	registry job.Registry
	log      *xlog.Logger
}

// New constructs an Executor backed by registry. A nil logger falls back
// to xlog.Default().
func New(registry job.Registry, log *xlog.Logger) *Executor {
	if log == nil {
		log = xlog.Default()
	}
	return &Executor{registry: registry, log: log}
}

// phase names the state machine's steps, logged at each transition as the
// design notes call for.
type phase string

const (
	phaseAccepted  phase = "accepted"
	phaseCompiling phase = "compiling"
	phaseExecuting phase = "executing"
	phaseReported  phase = "reported"
)

// Execute runs j to completion and returns exactly one Result. The
// returned error is non-nil only for programmer errors (a job with no
// token); any
// failure of the job itself — unsupported language, compile failure,
// timeout, OOM, non-zero exit — is encoded in the Result.
func (e *Executor) Execute(ctx context.Context, j job.Job) (*job.Result, error) {
	if j.Token == "" {
		return nil, fmt.Errorf("executor: job has no token")
	}

	e.log.Debug("job accepted", "phase", phaseAccepted, "token", j.Token, "problem_id", j.ProblemID)

	recipe, ok := e.registry.Lookup(j.LanguageID)
	if !ok {
		e.log.Info("unsupported language", "token", j.Token, "language_id", j.LanguageID)
		return &job.Result{
			Token:    j.Token,
			Status:   job.StatusError,
			Stderr:   fmt.Sprintf("Unsupported language_id: %d", j.LanguageID),
			ExitCode: 1,
		}, nil
	}

	workDir, err := os.MkdirTemp("", "execq-job-")
	if err != nil {
		return &job.Result{
			Token:    j.Token,
			Status:   job.StatusError,
			Stderr:   fmt.Sprintf("failed to create workspace: %v", err),
			ExitCode: 1,
		}, nil
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			e.log.Warn("cleanup failed", "token", j.Token, "work_dir", workDir, "err", rmErr)
		}
	}()

	sourcePath := filepath.Join(workDir, "Main."+recipe.Extension)
	if err := os.WriteFile(sourcePath, []byte(j.SourceCode), 0o644); err != nil {
		return &job.Result{
			Token:    j.Token,
			Status:   job.StatusError,
			Stderr:   fmt.Sprintf("failed to write source: %v", err),
			ExitCode: 1,
		}, nil
	}

	if recipe.Kind == job.Compiled {
		e.log.Debug("compiling", "phase", phaseCompiling, "token", j.Token)
		result, ok := e.compile(ctx, j, recipe, sourcePath)
		if !ok {
			e.log.Debug("reported", "phase", phaseReported, "token", j.Token, "status", result.Status)
			return result, nil
		}
	}

	e.log.Debug("executing", "phase", phaseExecuting, "token", j.Token)
	result := e.run(ctx, j, recipe, sourcePath)
	e.log.Debug("reported", "phase", phaseReported, "token", j.Token, "status", result.Status)
	return result, nil
}

// compile runs the recipe's compile command under the fixed 30s cap. The
// boolean return is false when compilation failed and result is already
// the terminal Result for this job (caller must not proceed to execute).
func (e *Executor) compile(ctx context.Context, j job.Job, recipe job.Recipe, sourcePath string) (*job.Result, bool) {
	compileCtx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	cmdStr := recipe.CompileCmd(sourcePath)
	cmd := exec.CommandContext(compileCtx, "sh", "-c", cmdStr)
	cmd.Dir = filepath.Dir(sourcePath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	_ = cmd.Run()
	elapsed := time.Since(start)

	// Non-empty stderr is treated as failure even if the exit code was
	// zero — a deliberate, preserved behavior (SPEC_FULL.md §9 open
	// question (a)), not a bug to "fix" by keying off exit code instead.
	if stderr.Len() > 0 {
		result := &job.Result{
			Token:    j.Token,
			Status:   job.StatusCompilationError,
			Stderr:   stderr.String(),
			ExitCode: 1,
		}
		result.Duration(msOf(elapsed))
		return result, false
	}

	return nil, true
}

// run executes the recipe's execute command under the combined wall-clock
// and memory bound, then classifies the outcome.
func (e *Executor) run(ctx context.Context, j job.Job, recipe job.Recipe, sourcePath string) *job.Result {
	timeout := timeoutFor(j, recipe)
	memLimitKB := memoryLimitKBFor(j)

	execCmd := recipe.ExecuteCmd(sourcePath)
	boundedCmd := fmt.Sprintf("ulimit -v %d; exec timeout -k 1 %ds %s", memLimitKB, timeoutSeconds(timeout), execCmd)

	// A safety-net context deadline slightly beyond the shell-level
	// timeout ensures a misbehaving shell can't hang the worker forever;
	// the shell's own `timeout` is what actually produces exit code 124.
	runCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", boundedCmd)
	cmd.Dir = filepath.Dir(sourcePath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	exitCode := exitCodeOf(runErr)

	result := &job.Result{
		Token:    j.Token,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}

	switch exitCode {
	case job.ExitTimeout:
		result.Status = job.StatusTimeout
		result.Stderr = "Execution timed out"
		result.Duration(float64(timeout.Milliseconds()))
		return result
	case job.ExitOOM:
		result.Status = job.StatusMemoryLimitExceeded
		result.Duration(msOf(elapsed))
		return result
	case 0:
		result.Status = job.StatusCompleted
		result.Duration(msOf(elapsed))
		return result
	default:
		result.Status = job.StatusRuntimeError
		result.Duration(msOf(elapsed))
		return result
	}
}

func timeoutFor(j job.Job, recipe job.Recipe) time.Duration {
	if j.TimeoutMS > 0 {
		return time.Duration(j.TimeoutMS) * time.Millisecond
	}
	return recipe.DefaultTimeout
}

func memoryLimitKBFor(j job.Job) int {
	mb := j.MemoryLimitMB
	if mb <= 0 {
		mb = job.DefaultMemoryLimitMB
	}
	return mb * 1024
}

func timeoutSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func msOf(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

// exitCodeOf extracts a process exit code from the error os/exec.Cmd.Run
// returns, treating "ran and exited non-zero" and "ran to completion" the
// only two shapes the executor needs to distinguish at this layer.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	// Context deadline exceeded without the shell-level `timeout` having
	// fired yet (e.g. it was killed mid-launch) — treat as a timeout.
	return job.ExitTimeout
}
