// Package cluster defines the narrow read/write surface the orchestrator's
// scaling loop needs from the cluster controller: list pods, read per-pod
// CPU/memory usage, patch deployment replicas, and (optionally) read
// deployment status. Isolating this behind an interface keeps the scaling
// algorithm in pkg/orchestrator testable against a fake instead of a live
// cluster.
package cluster

import "context"

// PodUsage is one pod's resource usage sample. CPU is already resolved to
// cores (the metrics API's resource.Quantity, converted once at the
// source) so nothing downstream re-parses a quantity string.
type PodUsage struct {
	Name   string
	CPU    float64
	Memory string
}

// DeploymentStatus summarizes a Deployment's replica counts for
// observability. Not consulted by the scaling algorithm itself.
type DeploymentStatus struct {
	DesiredReplicas   int32
	ReadyReplicas     int32
	AvailableReplicas int32
}

// Cluster is the collaborator §6 and §9 of the spec call for: exactly five
// operations, narrow enough to fake in tests.
type Cluster interface {
	// ListPods returns the count of pods matching selector.
	ListPods(ctx context.Context, selector string) (int, error)

	// PodMetrics returns a CPU/memory usage sample per pod matching
	// selector. Implementations may return an empty slice (not an error)
	// when no metrics are currently available.
	PodMetrics(ctx context.Context, selector string) ([]PodUsage, error)

	// PatchReplicas sets deployment's replica count to n.
	PatchReplicas(ctx context.Context, deployment string, n int32) error

	// DeploymentStatus reads deployment's current replica counts.
	DeploymentStatus(ctx context.Context, deployment string) (*DeploymentStatus, error)

	// Close releases any resources held by the client. Safe to call once.
	Close() error
}
