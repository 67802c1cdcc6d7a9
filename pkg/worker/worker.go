// Package worker implements the worker loop (§4.2): a single-threaded
// process that drains jobs from the shared queue one at a time, hands
// each to the executor, and delivers the result to the job's callback URL
// if one is set. Horizontal scale-out across many worker processes is the
// concurrency model — this package assumes no thread-safety with peers.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/execq/execq/internal/xlog"
	"github.com/execq/execq/pkg/executor"
	"github.com/execq/execq/pkg/job"
	"github.com/execq/execq/pkg/queue"
)

// popTimeout bounds each BlockingPopLeft call so the loop can observe
// Shutdown between pops instead of blocking on the queue client forever.
const popTimeout = 2 * time.Second

// popBackoff is the sleep after a queue-level pop error (§7: "log, backoff
// 1s, retry forever").
const popBackoff = 1 * time.Second

// Worker drains queue jobs and reports results, one in-flight job at a
// time.
type Worker struct {
	id     string
	q      queue.Queue
	exec   *executor.Executor
	client *http.Client
	log    *xlog.Logger
	stopCh chan struct{}
}

// New constructs a Worker with a freshly generated worker_id (logged only,
// never part of any wire contract). webhookTimeout bounds the single
// webhook POST attempt per delivered result. A nil logger falls back to
// xlog.Default().
func New(q queue.Queue, exec *executor.Executor, webhookTimeout time.Duration, log *xlog.Logger) *Worker {
	if log == nil {
		log = xlog.Default()
	}
	return &Worker{
		id:     uuid.NewString(),
		q:      q,
		exec:   exec,
		client: &http.Client{Timeout: webhookTimeout},
		log:    log,
		stopCh: make(chan struct{}),
	}
}

// Run drains the queue until ctx is cancelled or Shutdown is called. After
// Shutdown it returns once the in-flight job (if any) has been completed and
// reported; cancelling ctx also cancels the in-flight job's execution and
// webhook POST.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("worker started", "worker_id", w.id)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopping: context cancelled", "worker_id", w.id)
			return
		case <-w.stopCh:
			w.log.Info("worker stopping: shutdown requested", "worker_id", w.id)
			return
		default:
		}

		body, err := w.q.BlockingPopLeft(ctx, popTimeout)
		if err != nil {
			if err == queue.ErrEmpty {
				continue
			}
			w.log.Error("pop failed", "worker_id", w.id, "err", err)
			time.Sleep(popBackoff)
			continue
		}

		w.handle(ctx, body)
	}
}

// Shutdown signals Run's loop to stop picking up new jobs. Safe to call
// once; the in-flight job, if any, finishes before Run returns.
func (w *Worker) Shutdown() {
	close(w.stopCh)
}

func (w *Worker) handle(ctx context.Context, body []byte) {
	var j job.Job
	if err := json.Unmarshal(body, &j); err != nil {
		w.log.Error("dropping malformed job", "worker_id", w.id, "err", err)
		return
	}

	w.log.Info(fmt.Sprintf("Processing job %s for problem %s", j.Token, j.ProblemID), "worker_id", w.id)

	result, err := w.exec.Execute(ctx, j)
	if err != nil {
		// Only programmer errors reach here (§7) — nothing left to report.
		w.log.Error("executor returned an error", "worker_id", w.id, "token", j.Token, "err", err)
		return
	}

	w.log.Info("job finished", "worker_id", w.id, "token", result.Token, "status", result.Status)

	if j.CallbackURL == "" {
		w.log.Info("no callback_url, discarding result", "worker_id", w.id, "token", result.Token)
		return
	}

	if err := w.postCallback(ctx, j.CallbackURL, result); err != nil {
		w.log.Error("webhook delivery failed", "worker_id", w.id, "token", result.Token, "err", err)
	}
}

// postCallback POSTs the result JSON to url with a single attempt. Failure
// is the caller's to log — the result is lost, per the at-most-once
// webhook contract (§4.2 rationale).
func (w *Worker) postCallback(ctx context.Context, url string, result *job.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("worker: encoding result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("worker: building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("worker: posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("worker: webhook receiver returned %s", resp.Status)
	}
	return nil
}
