package httpapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/execq/execq/pkg/orchestrator"
)

// NewRouter builds the chi router backing the orchestrator's HTTP surface,
// with huma/v2 operation registration generating an OpenAPI document as a
// side effect — the same router/middleware pairing the reference
// controller uses (apps/controller/main.go).
func NewRouter(orch *orchestrator.Orchestrator) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("execq Orchestrator", "1.0.0")
	api := humachi.New(router, cfg)

	RegisterRoutes(api, orch)

	return router
}
