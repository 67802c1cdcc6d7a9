// Command orchestrator runs the control-plane process: it serves the
// submission/queue-status/health HTTP surface and drives the periodic
// scaling reconciler against the cluster deployment.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/execq/execq/internal/xlog"
	"github.com/execq/execq/pkg/cluster"
	"github.com/execq/execq/pkg/config"
	"github.com/execq/execq/pkg/httpapi"
	"github.com/execq/execq/pkg/orchestrator"
	"github.com/execq/execq/pkg/queue"
)

// shutdownGrace bounds how long the HTTP server waits for in-flight
// requests to drain on SIGTERM/SIGINT before forcing close.
const shutdownGrace = 10 * time.Second

func main() {
	log := xlog.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading configuration", "err", err)
	}
	cfg.Print(func(format string, args ...interface{}) { log.Info(fmt.Sprintf(format, args...)) })

	q, err := queue.New(queue.Config{Addr: cfg.RedisAddr(), Password: cfg.RedisPassword})
	if err != nil {
		log.Fatal("connecting to queue", "err", err)
	}

	cl, err := cluster.NewK8sCluster(cfg.Namespace)
	if err != nil {
		log.Fatal("connecting to cluster", "err", err)
	}

	scalingCfg := orchestrator.ScalingConfig{
		MinPods:          cfg.MinPods,
		MaxPods:          cfg.MaxPods,
		JobsPerPod:       cfg.JobsPerPod,
		CheckInterval:    cfg.CheckIntervalMS,
		CPUHighWatermark: cfg.CPUHighWatermark,
		Deployment:       cfg.DeploymentName,
		PodSelector:      cfg.PodSelector,
	}

	orch := orchestrator.New(q, cl, scalingCfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch.StartScalingLoop(ctx)

	router := httpapi.NewRouter(orch)
	addr := fmt.Sprintf(":%s", cfg.Port)

	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Info("orchestrator listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", "err", err)
	}

	if err := orch.Shutdown(); err != nil {
		log.Error("orchestrator shutdown error", "err", err)
	}
}
