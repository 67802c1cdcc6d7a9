// Command worker runs a single worker-loop process: it drains jobs from
// the shared queue one at a time, executes each, and delivers the result
// to the job's callback URL. Horizontal scale-out is achieved by running
// many copies of this binary as separate pods, not by concurrency within
// one process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/execq/execq/internal/xlog"
	"github.com/execq/execq/pkg/config"
	"github.com/execq/execq/pkg/executor"
	"github.com/execq/execq/pkg/job"
	"github.com/execq/execq/pkg/queue"
	"github.com/execq/execq/pkg/worker"
)

func main() {
	log := xlog.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading configuration", "err", err)
	}

	q, err := queue.New(queue.Config{Addr: cfg.RedisAddr(), Password: cfg.RedisPassword})
	if err != nil {
		log.Fatal("connecting to queue", "err", err)
	}

	exec := executor.New(job.DefaultRegistry(), log)
	webhookTimeout := time.Duration(cfg.WebhookTimeoutMS) * time.Millisecond
	w := worker.New(q, exec, webhookTimeout, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		w.Shutdown()
	}()

	// The loop gets its own context so a signal stops it through Shutdown
	// without cancelling the in-flight job's execution or webhook POST.
	w.Run(context.Background())

	if err := q.Close(); err != nil {
		log.Error("closing queue client", "err", err)
	}
}
