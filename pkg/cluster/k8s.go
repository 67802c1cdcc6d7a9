package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclientset "k8s.io/metrics/pkg/client/clientset/versioned"
)

// K8sCluster implements Cluster against a live Kubernetes API server using
// client-go for pod/deployment CRUD and the metrics.k8s.io aggregated API
// (via k8s.io/metrics) for per-pod CPU/memory usage.
type K8sCluster struct {
	clientset *kubernetes.Clientset
	metrics   *metricsclientset.Clientset
	namespace string
}

// NewK8sCluster builds a K8sCluster for namespace, resolving credentials
// the same way the reference repo's pkg/k8s client does: in-cluster config
// first (when running as a pod with a service account), falling back to
// KUBECONFIG / ~/.kube/config for local development.
func NewK8sCluster(namespace string) (*K8sCluster, error) {
	config, err := restConfig()
	if err != nil {
		return nil, fmt.Errorf("cluster: resolving kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("cluster: building clientset: %w", err)
	}

	metrics, err := metricsclientset.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("cluster: building metrics clientset: %w", err)
	}

	return &K8sCluster{clientset: clientset, metrics: metrics, namespace: namespace}, nil
}

func restConfig() (*rest.Config, error) {
	if config, err := rest.InClusterConfig(); err == nil {
		return config, nil
	}

	kubeconfig := os.Getenv("KUBECONFIG")
	if kubeconfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		kubeconfig = filepath.Join(home, ".kube", "config")
	}

	return clientcmd.BuildConfigFromFlags("", kubeconfig)
}

func (c *K8sCluster) ListPods(ctx context.Context, selector string) (int, error) {
	pods, err := c.clientset.CoreV1().Pods(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return 0, fmt.Errorf("cluster: listing pods: %w", err)
	}
	return len(pods.Items), nil
}

func (c *K8sCluster) PodMetrics(ctx context.Context, selector string) ([]PodUsage, error) {
	list, err := c.metrics.MetricsV1beta1().PodMetricses(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return nil, fmt.Errorf("cluster: reading pod metrics: %w", err)
	}

	usages := make([]PodUsage, 0, len(list.Items))
	for _, pm := range list.Items {
		var cpu float64
		var mem resource.Quantity
		for _, container := range pm.Containers {
			if q, ok := container.Usage["cpu"]; ok {
				cpu += q.AsApproximateFloat64()
			}
			if q, ok := container.Usage["memory"]; ok {
				mem.Add(q)
			}
		}
		usages = append(usages, PodUsage{Name: pm.Name, CPU: cpu, Memory: mem.String()})
	}
	return usages, nil
}

func (c *K8sCluster) PatchReplicas(ctx context.Context, deployment string, n int32) error {
	patch := map[string]interface{}{
		"spec": map[string]interface{}{
			"replicas": n,
		},
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("cluster: marshaling replica patch: %w", err)
	}

	_, err = c.clientset.AppsV1().Deployments(c.namespace).Patch(
		ctx, deployment, types.StrategicMergePatchType, body, metav1.PatchOptions{},
	)
	if err != nil {
		return fmt.Errorf("cluster: patching deployment %s: %w", deployment, err)
	}
	return nil
}

func (c *K8sCluster) DeploymentStatus(ctx context.Context, deployment string) (*DeploymentStatus, error) {
	dep, err := c.clientset.AppsV1().Deployments(c.namespace).Get(ctx, deployment, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("cluster: reading deployment %s: %w", deployment, err)
	}

	desired := int32(1)
	if dep.Spec.Replicas != nil {
		desired = *dep.Spec.Replicas
	}

	return &DeploymentStatus{
		DesiredReplicas:   desired,
		ReadyReplicas:     dep.Status.ReadyReplicas,
		AvailableReplicas: dep.Status.AvailableReplicas,
	}, nil
}

// Close is a no-op: the generated clientsets hold no connection to release
// explicitly (they ride on the shared http.Client transport), but the
// method exists so Cluster and queue.Queue have symmetrical lifecycles.
func (c *K8sCluster) Close() error {
	return nil
}

var _ Cluster = (*K8sCluster)(nil)
