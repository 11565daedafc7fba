// Package service builds the public sitemap from the static pages and the active bandi.
package service

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	bandiservice "github.com/concoro/concoro-platform/domains/bandi/be/service"
	"github.com/concoro/concoro-platform/platform/go/logging"
	"github.com/concoro/concoro-platform/platform/go/metrics"
	"github.com/concoro/concoro-platform/platform/go/requesttrace"
	"github.com/concoro/concoro-platform/platform/go/storage"
)

const (
	xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// ObjectKey is the published file name.
	ObjectKey = "sitemap-static.xml"
	// ContentType of the encoded document.
	ContentType = "application/xml; charset=utf-8"

	bandoChangeFrequency = "daily"
	bandoPriority        = 0.8
)

// Entry is a single sitemap URL.
type Entry struct {
	Loc             string
	LastModified    time.Time
	ChangeFrequency string
	Priority        float64
}

// BandiLister is the subset of the bandi service the sitemap needs.
type BandiLister interface {
	ListActive(ctx context.Context, audit requesttrace.AuditInfo) ([]bandiservice.Bando, error)
}

// Config controls the generated document.
type Config struct {
	BaseURL     string
	StaticPages []StaticPage
	// CacheTTL bounds how long Render reuses a document. Zero disables caching.
	CacheTTL time.Duration
	// CacheControl is set on published objects.
	CacheControl string
}

// Service builds, caches and publishes the sitemap.
type Service struct {
	bandi     BandiLister
	publisher storage.Publisher
	cfg       Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	// renders collapses concurrent cold-cache rebuilds into one bandi scan.
	renders singleflight.Group

	mu       sync.Mutex
	cached   []byte
	cachedAt time.Time
}

// New constructs a sitemap Service. publisher may be nil when only serving over HTTP.
func New(bandi BandiLister, publisher storage.Publisher, cfg Config, logger *zap.Logger, m *metrics.Metrics) *Service {
	if bandi == nil {
		panic("bandi lister is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.StaticPages == nil {
		cfg.StaticPages = DefaultStaticPages()
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "public, max-age=3600"
	}
	return &Service{bandi: bandi, publisher: publisher, cfg: cfg, logger: logger, metrics: m, now: time.Now}
}

// Build lists every static page followed by one entry per active bando.
func (s *Service) Build(ctx context.Context) ([]Entry, error) {
	audit := requesttrace.FromContextOrAnonymous(ctx)
	bandi, err := s.bandi.ListActive(ctx, audit)
	if err != nil {
		return nil, fmt.Errorf("list active bandi: %w", err)
	}

	now := s.now().UTC()
	entries := make([]Entry, 0, len(s.cfg.StaticPages)+len(bandi))
	for _, p := range s.cfg.StaticPages {
		entries = append(entries, Entry{
			Loc:             s.cfg.BaseURL + p.Path,
			LastModified:    now,
			ChangeFrequency: p.ChangeFrequency,
			Priority:        p.Priority,
		})
	}

	seen := make(map[string]struct{}, len(bandi))
	for _, b := range bandi {
		if _, dup := seen[b.Path]; dup {
			continue
		}
		seen[b.Path] = struct{}{}

		lastMod := b.Record.PublicationDate
		if lastMod.IsZero() {
			lastMod = now
		}
		entries = append(entries, Entry{
			Loc:             s.cfg.BaseURL + b.Path,
			LastModified:    lastMod,
			ChangeFrequency: bandoChangeFrequency,
			Priority:        bandoPriority,
		})
	}
	return entries, nil
}

// Render returns the encoded document, reusing the last one while it is younger than CacheTTL.
// Concurrent callers that find the cache stale share a single rebuild.
func (s *Service) Render(ctx context.Context) ([]byte, error) {
	if doc, ok := s.fresh(); ok {
		return doc, nil
	}

	v, err, _ := s.renders.Do("render", func() (any, error) {
		if doc, ok := s.fresh(); ok {
			return doc, nil
		}
		doc, err := s.render(ctx)
		if err != nil {
			return nil, err
		}
		s.store(doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Publish renders a fresh document, writes it through the publisher and refreshes the cache.
func (s *Service) Publish(ctx context.Context) (storage.ObjectLocation, error) {
	if s.publisher == nil {
		return storage.ObjectLocation{}, fmt.Errorf("sitemap publisher is not configured")
	}

	doc, err := s.render(ctx)
	if err != nil {
		return storage.ObjectLocation{}, err
	}

	loc, err := s.publisher.Publish(ctx, storage.Object{
		Key:          ObjectKey,
		ContentType:  ContentType,
		CacheControl: s.cfg.CacheControl,
		Data:         doc,
	})
	if err != nil {
		return storage.ObjectLocation{}, fmt.Errorf("publish sitemap: %w", err)
	}
	s.store(doc)

	audit := requesttrace.FromContextOrAnonymous(ctx)
	logging.FromContext(ctx, s.logger).Info("sitemap published",
		append(audit.Fields(), zap.String("location", loc.String()), zap.Int("bytes", len(doc)))...)
	return loc, nil
}

func (s *Service) fresh() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.cfg.CacheTTL > 0 && s.now().Sub(s.cachedAt) < s.cfg.CacheTTL {
		return s.cached, true
	}
	return nil, false
}

func (s *Service) store(doc []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached, s.cachedAt = doc, s.now()
}

func (s *Service) render(ctx context.Context) ([]byte, error) {
	entries, err := s.Build(ctx)
	if err != nil {
		s.metrics.SitemapBuilt(0, err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, entries); err != nil {
		s.metrics.SitemapBuilt(0, err)
		return nil, err
	}
	s.metrics.SitemapBuilt(len(entries), nil)
	return buf.Bytes(), nil
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Encode writes entries as a sitemaps.org urlset document.
func Encode(w io.Writer, entries []Entry) error {
	set := urlSet{XMLNS: xmlns, URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		u := xmlURL{Loc: e.Loc, ChangeFreq: e.ChangeFrequency, Priority: formatPriority(e.Priority)}
		if !e.LastModified.IsZero() {
			u.LastMod = e.LastModified.UTC().Format(time.DateOnly)
		}
		set.URLs = append(set.URLs, u)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// formatPriority keeps every significant digit and at least one decimal place.
func formatPriority(p float64) string {
	out := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}
