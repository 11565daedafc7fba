// Package handler serves the sitemap and the admin trigger that republishes it.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/domains/sitemap/be/service"
	"github.com/concoro/concoro-platform/platform/go/logging"
	"github.com/concoro/concoro-platform/platform/go/problem"
	"github.com/concoro/concoro-platform/platform/go/storage"
)

// Sitemap is the subset of the sitemap service used over HTTP.
type Sitemap interface {
	Render(ctx context.Context) ([]byte, error)
	Publish(ctx context.Context) (storage.ObjectLocation, error)
}

// Handler wires the sitemap service to HTTP.
type Handler struct {
	svc    Sitemap
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc Sitemap, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("sitemap service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// PublishResult is returned by the admin trigger.
type PublishResult struct {
	Location string `json:"location"`
}

// Serve writes the cached sitemap document.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Render(r.Context())
	if err != nil {
		logging.FromContext(r.Context(), h.logger).Error("render sitemap", zap.Error(err))
		problem.Write(w, problem.New(http.StatusInternalServerError, problem.TypeInternal, "Internal server error", "sitemap is unavailable"))
		return
	}

	w.Header().Set("Content-Type", service.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// Publish regenerates the sitemap and pushes it to the configured storage.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	loc, err := h.svc.Publish(r.Context())
	if err != nil {
		logging.FromContext(r.Context(), h.logger).Error("publish sitemap", zap.Error(err))
		problem.Write(w, problem.New(http.StatusInternalServerError, problem.TypeInternal, "Internal server error", "sitemap could not be published"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(PublishResult{Location: loc.String()})
}
