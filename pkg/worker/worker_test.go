package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/execq/execq/pkg/executor"
	"github.com/execq/execq/pkg/job"
	"github.com/execq/execq/pkg/queue"
)

func echoRegistry() job.Registry {
	return job.Registry{
		71: job.NewInterpretedRecipe("sh", func(src string) string {
			return "cat " + src
		}, 5*time.Second),
	}
}

func TestWorker_DeliversWebhookOnCallback(t *testing.T) {
	received := make(chan job.Result, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var result job.Result
		if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
			t.Errorf("decoding webhook body: %v", err)
		}
		received <- result
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	q := queue.NewMemory()
	exec := executor.New(echoRegistry(), nil)
	w := New(q, exec, 2*time.Second, nil)

	j := job.NewJob("tok-1", job.Input{
		SourceCode:  "hello\n",
		LanguageID:  71,
		ProblemID:   "p1",
		CallbackURL: srv.URL,
	})
	body, _ := json.Marshal(j)
	if err := q.PushRight(context.Background(), body); err != nil {
		t.Fatalf("PushRight failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go w.Run(ctx)

	select {
	case result := <-received:
		if result.Token != "tok-1" {
			t.Errorf("expected token tok-1, got %s", result.Token)
		}
		if result.Status != job.StatusCompleted {
			t.Errorf("expected completed, got %s", result.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
	}

	w.Shutdown()
}

func TestWorker_NoCallbackURL_DoesNotPanic(t *testing.T) {
	q := queue.NewMemory()
	exec := executor.New(echoRegistry(), nil)
	w := New(q, exec, 2*time.Second, nil)

	j := job.NewJob("tok-2", job.Input{SourceCode: "hi\n", LanguageID: 71, ProblemID: "p2"})
	body, _ := json.Marshal(j)
	if err := q.PushRight(context.Background(), body); err != nil {
		t.Fatalf("PushRight failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	w.Run(ctx)
}

func TestWorker_MalformedJob_Dropped(t *testing.T) {
	q := queue.NewMemory()
	exec := executor.New(echoRegistry(), nil)
	w := New(q, exec, 2*time.Second, nil)

	if err := q.PushRight(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("PushRight failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	w.Run(ctx)
}
