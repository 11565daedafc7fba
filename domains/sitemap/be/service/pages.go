package service

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Change frequencies accepted by the sitemap protocol.
var changeFrequencies = []string{"always", "hourly", "daily", "weekly", "monthly", "yearly", "never"}

// StaticPage is a marketing page listed in the sitemap.
type StaticPage struct {
	Path            string  `yaml:"path"`
	ChangeFrequency string  `yaml:"changefreq"`
	Priority        float64 `yaml:"priority"`
}

// DefaultStaticPages lists the public pages of the site.
func DefaultStaticPages() []StaticPage {
	return []StaticPage{
		{Path: "/", ChangeFrequency: "daily", Priority: 1.0},
		{Path: "/bandi", ChangeFrequency: "daily", Priority: 0.9},
		{Path: "/chi-siamo", ChangeFrequency: "monthly", Priority: 0.5},
		{Path: "/contatti", ChangeFrequency: "monthly", Priority: 0.5},
		{Path: "/faq", ChangeFrequency: "monthly", Priority: 0.5},
		{Path: "/prezzi", ChangeFrequency: "monthly", Priority: 0.6},
		{Path: "/privacy-policy", ChangeFrequency: "yearly", Priority: 0.3},
		{Path: "/termini-e-condizioni", ChangeFrequency: "yearly", Priority: 0.3},
		{Path: "/blog", ChangeFrequency: "weekly", Priority: 0.7},
	}
}

type pagesFile struct {
	Pages []StaticPage `yaml:"pages"`
}

// LoadStaticPages reads a YAML document of the form `pages: [{path, changefreq, priority}]`.
// Missing changefreq defaults to monthly and missing priority to 0.5.
func LoadStaticPages(r io.Reader) ([]StaticPage, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc pagesFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("static pages file is empty")
		}
		return nil, fmt.Errorf("decode static pages: %w", err)
	}

	var errs []error
	pages := make([]StaticPage, 0, len(doc.Pages))
	seen := make(map[string]struct{}, len(doc.Pages))
	for i, p := range doc.Pages {
		p.Path = strings.TrimSpace(p.Path)
		if p.ChangeFrequency == "" {
			p.ChangeFrequency = "monthly"
		}
		if p.Priority == 0 {
			p.Priority = 0.5
		}
		if err := p.validate(); err != nil {
			errs = append(errs, fmt.Errorf("page %d: %w", i, err))
			continue
		}
		if _, dup := seen[p.Path]; dup {
			errs = append(errs, fmt.Errorf("page %d: duplicate path %q", i, p.Path))
			continue
		}
		seen[p.Path] = struct{}{}
		pages = append(pages, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return pages, nil
}

func (p StaticPage) validate() error {
	if !strings.HasPrefix(p.Path, "/") {
		return fmt.Errorf("path %q must start with '/'", p.Path)
	}
	if !slices.Contains(changeFrequencies, p.ChangeFrequency) {
		return fmt.Errorf("changefreq %q is not one of %s", p.ChangeFrequency, strings.Join(changeFrequencies, ", "))
	}
	if p.Priority < 0 || p.Priority > 1 {
		return fmt.Errorf("priority %.2f must be within [0, 1]", p.Priority)
	}
	return nil
}
