// Package handler exposes the bandi service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
	"github.com/concoro/concoro-platform/domains/bandi/be/service"
	"github.com/concoro/concoro-platform/domains/bandi/be/slug"
	"github.com/concoro/concoro-platform/platform/go/logging"
	"github.com/concoro/concoro-platform/platform/go/problem"
	"github.com/concoro/concoro-platform/platform/go/requesttrace"
)

type operation string

const (
	getOperation        operation = "bandiGet"
	getBySlugOperation  operation = "bandiGetBySlug"
	resolveOperation    operation = "bandiResolve"
	listByEnteOperation operation = "bandiListByEnte"
)

// Handler wires the bandi service to the /api/v1 routes.
type Handler struct {
	svc    service.Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc service.Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("bandi service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the endpoints relative to the API prefix.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/bandi/{bandoId}", h.GetBando)
	r.Get("/bandi/{regione}/{provincia}/{ente}/{titolo}/{data}/{bandoId}", h.GetBandoBySlug)
	r.Get("/resolve", h.Resolve)
	r.Get("/enti/{enteSlug}/bandi", h.ListByEnte)
	r.Get("/slugs/inspect", h.InspectSlug)
}

// Province is the API view of a province entry.
type Province struct {
	ProvinciaNome string `json:"provinciaNome"`
	RegioneNome   string `json:"regioneNome"`
}

// Bando is the API view of a competition.
type Bando struct {
	ID              string     `json:"id"`
	ConcorsoID      string     `json:"concorsoId,omitempty"`
	Ente            string     `json:"ente"`
	Titolo          string     `json:"titolo"`
	AreaGeografica  string     `json:"areaGeografica,omitempty"`
	Province        []Province `json:"province,omitempty"`
	PublicationDate *string    `json:"publicationDate"`
	DataChiusura    *string    `json:"dataChiusura,omitempty"`
	Stato           string     `json:"stato,omitempty"`
	Slug            string     `json:"slug"`
	Path            string     `json:"path"`
	Canonical       bool       `json:"canonical"`
}

// BandiList wraps list responses.
type BandiList struct {
	Items      []Bando `json:"items"`
	TotalItems int     `json:"totalItems"`
}

// SlugInspection is the API view of service.SlugInspection.
type SlugInspection struct {
	Slug       string          `json:"slug"`
	Valid      bool            `json:"valid"`
	DocumentID bool            `json:"documentId"`
	Parsed     *slug.ParsedSlug `json:"parsed,omitempty"`
}

func (h *Handler) GetBando(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), audit(r), chi.URLParam(r, "bandoId"))
	if err != nil {
		h.writeError(w, r, err, getOperation)
		return
	}
	h.writeBando(w, b)
}

func (h *Handler) GetBandoBySlug(w http.ResponseWriter, r *http.Request) {
	parsed := slug.ParsedSlug{
		Regione:           chi.URLParam(r, "regione"),
		Provincia:         chi.URLParam(r, "provincia"),
		Ente:              chi.URLParam(r, "ente"),
		TitoloBreve:       chi.URLParam(r, "titolo"),
		DataPubblicazione: chi.URLParam(r, "data"),
		ConcorsoID:        chi.URLParam(r, "bandoId"),
	}
	b, err := h.svc.GetBySlug(r.Context(), audit(r), parsed.String())
	if err != nil {
		h.writeError(w, r, err, getBySlugOperation)
		return
	}
	h.writeBando(w, b)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Resolve(r.Context(), audit(r), r.URL.Query().Get("path"))
	if err != nil {
		h.writeError(w, r, err, resolveOperation)
		return
	}
	h.writeBando(w, b)
}

func (h *Handler) ListByEnte(w http.ResponseWriter, r *http.Request) {
	bandi, err := h.svc.ListByEnteSlug(r.Context(), audit(r), chi.URLParam(r, "enteSlug"))
	if err != nil {
		h.writeError(w, r, err, listByEnteOperation)
		return
	}

	items := make([]Bando, 0, len(bandi))
	for _, b := range bandi {
		items = append(items, toAPIBando(b))
	}
	writeJSON(w, http.StatusOK, BandiList{Items: items, TotalItems: len(items)})
}

func (h *Handler) InspectSlug(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("slug")
	if strings.TrimSpace(raw) == "" {
		p := problem.New(http.StatusBadRequest, problem.TypeValidation, "Validation failed", "slug query parameter is required")
		p.Errors = map[string][]string{"slug": {"slug is required"}}
		problem.Write(w, p)
		return
	}

	in := h.svc.Inspect(raw)
	writeJSON(w, http.StatusOK, SlugInspection{Slug: in.Slug, Valid: in.Valid, DocumentID: in.DocumentID, Parsed: in.Parsed})
}

func (h *Handler) writeBando(w http.ResponseWriter, b service.Bando) {
	w.Header().Set("Link", "<"+b.Path+`>; rel="canonical"`)
	writeJSON(w, http.StatusOK, toAPIBando(b))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, op operation) {
	problem.Write(w, h.problemForError(r.Context(), err, op))
}

func (h *Handler) problemForError(ctx context.Context, err error, op operation) problem.Details {
	p := classifyError(err)

	logger := logging.FromContext(ctx, h.logger)
	fields := []zap.Field{
		zap.String("operation", string(op)),
		zap.Int("status", p.Status),
		zap.Error(err),
	}
	switch {
	case p.Status >= http.StatusInternalServerError:
		logger.Error("bandi operation failed", fields...)
	case p.Status == http.StatusNotFound:
		logger.Info("bando not found", fields...)
	default:
		logger.Warn("bandi request rejected", fields...)
	}
	return p
}

func classifyError(err error) problem.Details {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		p := problem.New(http.StatusBadRequest, problem.TypeValidation, "Validation failed", "one or more fields are invalid")
		if len(validationErr.Fields) > 0 {
			p.Errors = make(map[string][]string, len(validationErr.Fields))
			for field, messages := range validationErr.Fields {
				p.Errors[field] = append([]string(nil), messages...)
			}
		}
		return p
	case errors.Is(err, service.ErrNotFound):
		return problem.New(http.StatusNotFound, problem.TypeNotFound, "Resource not found", "bando not found")
	case errors.Is(err, context.DeadlineExceeded):
		return problem.New(http.StatusGatewayTimeout, problem.TypeInternal, "", "the lookup timed out")
	default:
		return problem.New(http.StatusInternalServerError, problem.TypeInternal, "Internal server error", "an unexpected error occurred")
	}
}

func toAPIBando(b service.Bando) Bando {
	rec := b.Record
	out := Bando{
		ID:              rec.ID,
		ConcorsoID:      rec.ConcorsoID,
		Ente:            rec.Ente,
		Titolo:          rec.Titolo,
		AreaGeografica:  rec.AreaGeografica,
		Province:        toAPIProvince(rec.Province),
		PublicationDate: formatDate(rec.PublicationDate),
		DataChiusura:    formatDate(rec.DataChiusura),
		Stato:           rec.Stato,
		Slug:            b.Slug,
		Path:            b.Path,
		Canonical:       b.Canonical,
	}
	return out
}

func toAPIProvince(in []model.Province) []Province {
	if len(in) == 0 {
		return nil
	}
	out := make([]Province, 0, len(in))
	for _, p := range in {
		out = append(out, Province{ProvinciaNome: p.ProvinciaNome, RegioneNome: p.RegioneNome})
	}
	return out
}

func formatDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.DateOnly)
	return &s
}

func audit(r *http.Request) requesttrace.AuditInfo {
	return requesttrace.FromContextOrAnonymous(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
