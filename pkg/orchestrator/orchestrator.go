// Package orchestrator implements the control-plane process: it accepts
// submissions onto the shared queue, reports backlog/worker visibility,
// and runs the periodic scaling reconciler that sizes the worker
// deployment against both queue depth and observed CPU pressure.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/execq/execq/internal/xlog"
	"github.com/execq/execq/pkg/cluster"
	"github.com/execq/execq/pkg/job"
	"github.com/execq/execq/pkg/queue"
)

// ErrQueueUnavailable is returned by SubmitJob/SubmitBatch when the queue
// connection is not healthy.
var ErrQueueUnavailable = errors.New("orchestrator: queue unavailable")

// ErrValidation wraps input-validation failures from SubmitJob/SubmitBatch
// so an HTTP surface can distinguish a 400 from a 500 with errors.Is.
var ErrValidation = errors.New("orchestrator: validation failed")

// IsValidationError reports whether err originated from a job.Input
// validation failure, as opposed to a queue or encoding failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// QueueStatus is the snapshot QueueStatus() returns.
type QueueStatus struct {
	Queued      int64 `json:"queued"`
	WorkerCount int   `json:"worker_count"`
}

// Orchestrator owns the queue producer side and the scaling reconciler.
// Submission and scaling are independent activities that never block one
// another — the reconciler holds no lock over submission state.
type Orchestrator struct {
	q   queue.Queue
	cl  cluster.Cluster
	cfg ScalingConfig
	log *xlog.Logger

	mu         sync.Mutex
	ticker     *time.Ticker
	tickerDone chan struct{}
	shutOnce   sync.Once
}

// New constructs an Orchestrator. log may be nil (defaults to xlog.Default()).
func New(q queue.Queue, cl cluster.Cluster, cfg ScalingConfig, log *xlog.Logger) *Orchestrator {
	if log == nil {
		log = xlog.Default()
	}
	return &Orchestrator{q: q, cl: cl, cfg: cfg, log: log}
}

// SubmitJob validates in, assigns a fresh token, and pushes the resulting
// job.Job onto the queue. It returns the token on success.
func (o *Orchestrator) SubmitJob(ctx context.Context, in job.Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	token, err := freshToken()
	if err != nil {
		return "", fmt.Errorf("orchestrator: generating token: %w", err)
	}

	j := job.NewJob(token, in)
	body, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("orchestrator: encoding job: %w", err)
	}

	if err := o.q.PushRight(ctx, body); err != nil {
		o.log.Error("submit failed", "err", err)
		return "", ErrQueueUnavailable
	}

	return token, nil
}

// SubmitBatch validates every input first (all-or-nothing) and, only if
// all pass, pushes each job in input order, returning tokens in that same
// order. A validation failure on any element rejects the entire batch
// before any token is generated or any job reaches the queue. Jobs are
// pushed one at a time: if a push fails, ErrQueueUnavailable is returned
// with no tokens, and the jobs pushed before it stay on the queue.
func (o *Orchestrator) SubmitBatch(ctx context.Context, inputs []job.Input) ([]string, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrValidation)
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("%w: submission %d: %v", ErrValidation, i, err)
		}
	}

	tokens := make([]string, len(inputs))
	jobs := make([]job.Job, len(inputs))
	for i, in := range inputs {
		token, err := freshToken()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: generating token: %w", err)
		}
		tokens[i] = token
		jobs[i] = job.NewJob(token, in)
	}

	for i, j := range jobs {
		body, err := json.Marshal(j)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: encoding job %d: %w", i, err)
		}
		if err := o.q.PushRight(ctx, body); err != nil {
			o.log.Error("batch submit failed", "index", i, "err", err)
			return nil, ErrQueueUnavailable
		}
	}

	return tokens, nil
}

// QueueStatus reads queue length and live pod count. Both reads may be
// stale by the time the caller observes them; no locking is implied.
func (o *Orchestrator) QueueStatus(ctx context.Context) (QueueStatus, error) {
	queued, err := o.q.Length(ctx)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("orchestrator: reading queue length: %w", err)
	}

	workers, err := o.cl.ListPods(ctx, o.cfg.PodSelector)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("orchestrator: reading worker count: %w", err)
	}

	return QueueStatus{Queued: queued, WorkerCount: workers}, nil
}

// StartScalingLoop installs a periodic timer that drives Reconcile every
// cfg.CheckInterval. Calling it while a loop is already running replaces
// the timer (idempotent).
func (o *Orchestrator) StartScalingLoop(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ticker != nil {
		o.ticker.Stop()
		close(o.tickerDone)
	}

	interval := time.Duration(o.cfg.CheckInterval) * time.Millisecond
	if interval <= 0 {
		interval = 10 * time.Second
	}

	o.ticker = time.NewTicker(interval)
	o.tickerDone = make(chan struct{})
	ticker := o.ticker
	done := o.tickerDone

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				o.Reconcile(ctx)
			}
		}
	}()
}

// StopScalingLoop cancels the periodic timer. Calling it when no loop is
// running is a no-op.
func (o *Orchestrator) StopScalingLoop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ticker == nil {
		return
	}
	o.ticker.Stop()
	close(o.tickerDone)
	o.ticker = nil
	o.tickerDone = nil
}

// Reconcile runs one tick of the scaling algorithm (§4.1). Any failure
// reading cluster state or patching replicas is logged and swallowed —
// the next tick retries.
func (o *Orchestrator) Reconcile(ctx context.Context) {
	queued, err := o.q.Length(ctx)
	if err != nil {
		o.log.Error("reconcile: reading queue length", "err", err)
		return
	}

	podCount, err := o.cl.ListPods(ctx, o.cfg.PodSelector)
	if err != nil {
		o.log.Error("reconcile: listing pods", "err", err)
		return
	}

	usages, err := o.cl.PodMetrics(ctx, o.cfg.PodSelector)
	if err != nil {
		o.log.Error("reconcile: reading pod metrics", "err", err)
		return
	}

	desired := desiredReplicas(queued, podCount, usages, o.cfg)

	if desired == podCount {
		o.log.Debug("reconcile: no-op", "queued", queued, "pods", podCount, "desired", desired)
		return
	}

	if err := o.cl.PatchReplicas(ctx, o.cfg.Deployment, int32(desired)); err != nil {
		o.log.Error("reconcile: patching replicas", "err", err, "desired", desired)
		return
	}

	o.log.Info("reconcile: scaled", "queued", queued, "from", podCount, "to", desired)
}

// Shutdown cancels the scaling timer and closes the queue connection.
// Safe to call once; subsequent calls are no-ops.
func (o *Orchestrator) Shutdown() error {
	var closeErr error
	o.shutOnce.Do(func() {
		o.StopScalingLoop()
		closeErr = o.q.Close()
	})
	return closeErr
}

func freshToken() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
