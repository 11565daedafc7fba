// Package service resolves bandi by identifier or SEO slug and decorates them with their public paths.
package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/domains/bandi/be/model"
	"github.com/concoro/concoro-platform/domains/bandi/be/repo"
	"github.com/concoro/concoro-platform/domains/bandi/be/slug"
	"github.com/concoro/concoro-platform/platform/go/logging"
	"github.com/concoro/concoro-platform/platform/go/metrics"
	"github.com/concoro/concoro-platform/platform/go/requesttrace"
	"github.com/concoro/concoro-platform/platform/go/slugtext"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

func (f FieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// ValidationError is returned when the input is malformed.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

func newValidationError(field, msg string) *ValidationError {
	fields := FieldErrors{}
	fields.add(field, msg)
	return &ValidationError{Fields: fields}
}

// ErrNotFound is returned when no bando matches.
var ErrNotFound = errors.New("bando not found")

// Lookup strategies reported in metrics.
const (
	StrategyID       = "id"
	StrategySlug     = "slug"
	StrategyEnteSlug = "ente_slug"
	StrategyEnteName = "ente_name"
)

// Bando is a record together with its SEO slug and public path.
type Bando struct {
	Record model.CompetitionRecord
	Slug   string
	// Path is /bandi/<slug>, or /bandi/<id> when the slug does not validate.
	Path string
	// Canonical is false when the bando was reached through a slug that differs from Slug.
	Canonical bool
}

// SlugInspection describes a raw slug without touching storage.
type SlugInspection struct {
	Slug       string
	Valid      bool
	DocumentID bool
	Parsed     *slug.ParsedSlug
}

// Service defines the business operations for the bandi domain.
type Service interface {
	Get(ctx context.Context, audit requesttrace.AuditInfo, id string) (Bando, error)
	GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, s string) (Bando, error)
	Resolve(ctx context.Context, audit requesttrace.AuditInfo, path string) (Bando, error)
	ListByEnteSlug(ctx context.Context, audit requesttrace.AuditInfo, enteSlug string) ([]Bando, error)
	ListActive(ctx context.Context, audit requesttrace.AuditInfo) ([]Bando, error)
	Inspect(s string) SlugInspection
}

type service struct {
	repo    repo.Repository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New constructs a bandi Service. logger and m may be nil.
func New(r repo.Repository, logger *zap.Logger, m *metrics.Metrics) Service {
	if r == nil {
		panic("bandi repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{repo: r, logger: logger, metrics: m}
}

func (s *service) Get(ctx context.Context, audit requesttrace.AuditInfo, id string) (Bando, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Bando{}, newValidationError("bandoId", "bandoId is required")
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		s.metrics.Lookup(StrategyID, outcome(err))
		return Bando{}, mapRepoError(err)
	}
	s.metrics.Lookup(StrategyID, "hit")
	return s.decorate(ctx, audit, rec), nil
}

func (s *service) GetBySlug(ctx context.Context, audit requesttrace.AuditInfo, raw string) (Bando, error) {
	requested := slug.TrimPath(raw)
	parsed, ok := slug.ParseBandoSlug(requested)
	if !ok {
		return Bando{}, newValidationError("slug", "slug must have six segments: regione/provincia/ente/titolo/YYYY-MM-DD/id")
	}
	if parsed.ConcorsoID == "" {
		return Bando{}, newValidationError("slug", "slug has an empty identifier segment")
	}

	rec, err := s.repo.Get(ctx, parsed.ConcorsoID)
	if err != nil {
		s.metrics.Lookup(StrategySlug, outcome(err))
		return Bando{}, mapRepoError(err)
	}
	s.metrics.Lookup(StrategySlug, "hit")

	b := s.decorate(ctx, audit, rec)
	b.Canonical = b.Slug == requested
	return b, nil
}

func (s *service) Resolve(ctx context.Context, audit requesttrace.AuditInfo, path string) (Bando, error) {
	trimmed := slug.TrimPath(path)
	switch {
	case trimmed == "":
		return Bando{}, newValidationError("path", "path is required")
	case slug.IsFirestoreDocumentID(trimmed), !strings.Contains(trimmed, "/"):
		return s.Get(ctx, audit, trimmed)
	default:
		return s.GetBySlug(ctx, audit, trimmed)
	}
}

func (s *service) ListByEnteSlug(ctx context.Context, audit requesttrace.AuditInfo, enteSlug string) ([]Bando, error) {
	enteSlug = strings.TrimSpace(enteSlug)
	if !slugtext.IsSlug(enteSlug) {
		return nil, newValidationError("enteSlug", "enteSlug must be lowercase letters, digits and single hyphens")
	}

	records, err := s.repo.ListByEnteSlug(ctx, enteSlug)
	if err != nil {
		s.metrics.Lookup(StrategyEnteSlug, "error")
		return nil, err
	}
	if len(records) > 0 {
		s.metrics.Lookup(StrategyEnteSlug, "hit")
		return s.decorateAll(ctx, audit, records), nil
	}
	s.metrics.Lookup(StrategyEnteSlug, "miss")

	records, err = s.matchEnteNames(ctx, enteSlug)
	if err != nil {
		s.metrics.Lookup(StrategyEnteName, "error")
		return nil, err
	}
	s.metrics.Lookup(StrategyEnteName, hitOrMiss(len(records)))
	return s.decorateAll(ctx, audit, records), nil
}

// matchEnteNames scans the distinct enti and loads every one whose name produces enteSlug.
func (s *service) matchEnteNames(ctx context.Context, enteSlug string) ([]model.CompetitionRecord, error) {
	enti, err := s.repo.ListEnti(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []model.CompetitionRecord
	for _, ente := range enti {
		if !slug.MatchesEnteSlug(ente, enteSlug) {
			continue
		}
		records, err := s.repo.ListByEnte(ctx, ente)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *service) ListActive(ctx context.Context, audit requesttrace.AuditInfo) ([]Bando, error) {
	records, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.decorateAll(ctx, audit, records), nil
}

func (s *service) Inspect(raw string) SlugInspection {
	trimmed := slug.TrimPath(raw)
	out := SlugInspection{
		Slug:       trimmed,
		Valid:      slug.IsValidBandoSlug(trimmed),
		DocumentID: slug.IsFirestoreDocumentID(trimmed),
	}
	if parsed, ok := slug.ParseBandoSlug(trimmed); ok {
		out.Parsed = &parsed
	}
	return out
}

func (s *service) decorateAll(ctx context.Context, audit requesttrace.AuditInfo, records []model.CompetitionRecord) []Bando {
	out := make([]Bando, 0, len(records))
	for _, rec := range records {
		out = append(out, s.decorate(ctx, audit, rec))
	}
	return out
}

func (s *service) decorate(ctx context.Context, audit requesttrace.AuditInfo, rec model.CompetitionRecord) Bando {
	built, err := slug.BuildBandoSlug(rec)
	if err != nil {
		logger := logging.FromContext(ctx, s.logger).With(audit.Fields()...)
		for _, fb := range slug.Fallbacks(err) {
			s.metrics.SlugFallback(fb.Segment)
			logger.Debug("slug segment fallback",
				zap.String("bando_id", rec.ID),
				zap.String("segment", fb.Segment),
				zap.String("fallback", fb.Fallback),
				zap.Error(fb.Err),
			)
		}
	}

	path := slug.PathPrefix + rec.Identifier()
	if slug.IsValidBandoSlug(built) {
		path = slug.PathPrefix + built
	}
	return Bando{Record: rec, Slug: built, Path: path, Canonical: true}
}

func mapRepoError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func outcome(err error) string {
	if errors.Is(err, repo.ErrNotFound) {
		return "miss"
	}
	return "error"
}

func hitOrMiss(n int) string {
	if n > 0 {
		return "hit"
	}
	return "miss"
}
