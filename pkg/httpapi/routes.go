// Package httpapi concretizes the "external collaborator" the distilled
// spec left abstract: a chi + huma/v2 server that frames the Orchestrator's
// Go API as real HTTP endpoints, following the reference controller's
// router/operation registration shape (apps/controller/routes in the
// reference repo).
package httpapi

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/execq/execq/pkg/job"
	"github.com/execq/execq/pkg/orchestrator"
)

// SubmitBatchInput is the request body for POST /submit/batch.
type SubmitBatchInput struct {
	Body struct {
		Submissions []job.Input `json:"submissions" doc:"Jobs to submit, in order"`
	}
}

// SubmitBatchOutput is the response body for POST /submit/batch.
type SubmitBatchOutput struct {
	Body struct {
		Tokens []string `json:"tokens" doc:"Assigned tokens, in submission order"`
	}
}

// QueueStatusOutput is the response body for GET /queue/status.
type QueueStatusOutput struct {
	Body struct {
		Queued      int64 `json:"queued"`
		WorkerCount int   `json:"worker_count"`
	}
}

// HealthOutput is the response body for GET /health.
type HealthOutput struct {
	Body struct {
		Status string `json:"status" example:"healthy"`
	}
}

// RegisterRoutes mounts every endpoint §4.4/§6 of SPEC_FULL.md define
// against orch.
func RegisterRoutes(api huma.API, orch *orchestrator.Orchestrator) {
	registerSubmitBatch(api, orch)
	registerQueueStatus(api, orch)
	registerHealth(api)
}

func registerSubmitBatch(api huma.API, orch *orchestrator.Orchestrator) {
	huma.Register(api, huma.Operation{
		OperationID: "submit-batch",
		Method:      http.MethodPost,
		Path:        "/submit/batch",
		Summary:     "Submit a batch of jobs",
		Description: "Validates and enqueues every submission in the batch, all-or-nothing, returning tokens in submission order.",
		Tags:        []string{"Jobs"},
	}, func(ctx context.Context, input *SubmitBatchInput) (*SubmitBatchOutput, error) {
		if len(input.Body.Submissions) == 0 {
			return nil, huma.Error400BadRequest("submissions must be a non-empty list")
		}

		tokens, err := orch.SubmitBatch(ctx, input.Body.Submissions)
		if err != nil {
			if orchestrator.IsValidationError(err) {
				return nil, huma.Error400BadRequest(err.Error())
			}
			return nil, huma.Error500InternalServerError(err.Error())
		}

		resp := &SubmitBatchOutput{}
		resp.Body.Tokens = tokens
		return resp, nil
	})
}

func registerQueueStatus(api huma.API, orch *orchestrator.Orchestrator) {
	huma.Register(api, huma.Operation{
		OperationID: "queue-status",
		Method:      http.MethodGet,
		Path:        "/queue/status",
		Summary:     "Backlog and worker visibility",
		Description: "Reads current queue depth and live worker pod count. Values may be momentarily stale.",
		Tags:        []string{"Queue"},
	}, func(ctx context.Context, input *struct{}) (*QueueStatusOutput, error) {
		status, err := orch.QueueStatus(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError(err.Error())
		}

		resp := &QueueStatusOutput{}
		resp.Body.Queued = status.Queued
		resp.Body.WorkerCount = status.WorkerCount
		return resp, nil
	})
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Static liveness probe — does not verify queue or cluster connectivity.",
		Tags:        []string{"General"},
	}, func(ctx context.Context, input *struct{}) (*HealthOutput, error) {
		resp := &HealthOutput{}
		resp.Body.Status = "healthy"
		return resp, nil
	})
}
