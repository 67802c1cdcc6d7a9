package orchestrator

import (
	"math"

	"github.com/execq/execq/pkg/cluster"
)

// ScalingConfig is the orchestrator's static scaling configuration (§3).
type ScalingConfig struct {
	MinPods          int
	MaxPods          int
	JobsPerPod       int
	CheckInterval    int64 // milliseconds
	CPUHighWatermark float64
	Deployment       string
	PodSelector      string
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// baseline computes clamp(ceil(L / jobs_per_pod), min_pods, max_pods) per
// §4.1 step 2. jobsPerPod <= 0 is treated as 1 to avoid division by zero —
// a pathological config should still produce a sane (if aggressive) scale.
func baseline(queued int64, cfg ScalingConfig) int {
	jobsPerPod := cfg.JobsPerPod
	if jobsPerPod <= 0 {
		jobsPerPod = 1
	}
	raw := int(math.Ceil(float64(queued) / float64(jobsPerPod)))
	return clamp(raw, cfg.MinPods, cfg.MaxPods)
}

// desiredReplicas implements the full §4.1 step-2/3 decision: the
// backlog-driven baseline, bumped by one (clamped to max_pods) when
// average per-pod CPU usage exceeds the high watermark.
func desiredReplicas(queued int64, podCount int, usages []cluster.PodUsage, cfg ScalingConfig) int {
	base := baseline(queued, cfg)

	if len(usages) == 0 {
		return base
	}

	avg := cluster.AverageCPU(usages, podCount)
	if avg > cfg.CPUHighWatermark {
		return clamp(base+1, cfg.MinPods, cfg.MaxPods)
	}
	return base
}
