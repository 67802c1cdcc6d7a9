package cluster

import (
	"context"
	"sync"
)

// Fake is an in-memory Cluster used by orchestrator and scaling tests. It
// carries no Kubernetes dependency at all, matching §9's call for the
// scaling loop to be testable against a fake cluster collaborator.
type Fake struct {
	mu        sync.Mutex
	PodCount  int
	Usages    []PodUsage
	Status    *DeploymentStatus
	Patches   []int32 // records every PatchReplicas call, in order
	closed    bool
}

// NewFake constructs a Fake with the given initial pod count.
func NewFake(podCount int) *Fake {
	return &Fake{PodCount: podCount}
}

func (f *Fake) ListPods(ctx context.Context, selector string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PodCount, nil
}

func (f *Fake) PodMetrics(ctx context.Context, selector string) ([]PodUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Usages, nil
}

func (f *Fake) PatchReplicas(ctx context.Context, deployment string, n int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Patches = append(f.Patches, n)
	f.PodCount = int(n)
	return nil
}

func (f *Fake) DeploymentStatus(ctx context.Context, deployment string) (*DeploymentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Status != nil {
		return f.Status, nil
	}
	return &DeploymentStatus{DesiredReplicas: int32(f.PodCount)}, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

var _ Cluster = (*Fake)(nil)
