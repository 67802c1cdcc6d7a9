package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/execq/execq/pkg/cluster"
	"github.com/execq/execq/pkg/orchestrator"
	"github.com/execq/execq/pkg/queue"
)

func newTestServer() (*httptest.Server, *queue.MemoryQueue) {
	q := queue.NewMemory()
	cl := cluster.NewFake(2)
	cfg := orchestrator.ScalingConfig{
		MinPods: 1, MaxPods: 10, JobsPerPod: 5,
		CheckInterval: 10_000, CPUHighWatermark: 0.8,
		Deployment: "execq-worker", PodSelector: "app=execq-worker",
	}
	orch := orchestrator.New(q, cl, cfg, nil)
	return httptest.NewServer(NewRouter(orch)), q
}

func TestSubmitBatch_Success(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	body := `{"submissions":[{"source_code":"print(1)","language_id":71,"problem_id":"p1"}]}`
	resp, err := http.Post(srv.URL+"/submit/batch", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out struct {
		Tokens []string `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(out.Tokens) != 1 || out.Tokens[0] == "" {
		t.Errorf("expected one non-empty token, got %v", out.Tokens)
	}
}

func TestSubmitBatch_EmptyRejected(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/submit/batch", "application/json", bytes.NewBufferString(`{"submissions":[]}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitBatch_MissingFieldRejected(t *testing.T) {
	srv, q := newTestServer()
	defer srv.Close()

	body := `{"submissions":[{"language_id":71}]}`
	resp, err := http.Post(srv.URL+"/submit/batch", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	n, _ := q.Length(context.Background())
	if n != 0 {
		t.Errorf("expected no jobs enqueued, got %d", n)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Status != "healthy" {
		t.Errorf("expected healthy, got %s", out.Status)
	}
}

func TestQueueStatus(t *testing.T) {
	srv, q := newTestServer()
	defer srv.Close()

	if err := q.PushRight(context.Background(), []byte("{}")); err != nil {
		t.Fatalf("PushRight failed: %v", err)
	}

	resp, err := http.Get(srv.URL + "/queue/status")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Queued      int64 `json:"queued"`
		WorkerCount int   `json:"worker_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Queued != 1 {
		t.Errorf("expected queued=1, got %d", out.Queued)
	}
	if out.WorkerCount != 2 {
		t.Errorf("expected worker_count=2, got %d", out.WorkerCount)
	}
}
