package main

import (
	"fmt"
	"os"
	"strings"

	sitemapservice "github.com/concoro/concoro-platform/domains/sitemap/be/service"
	"github.com/concoro/concoro-platform/platform/go/gcp"
	"github.com/concoro/concoro-platform/platform/go/storage"
)

// buildPublisher selects where the admin trigger writes the sitemap.
func buildPublisher(cfg config, clients *gcp.Clients) (storage.Publisher, error) {
	switch cfg.SitemapBackend {
	case "gcs":
		if strings.TrimSpace(cfg.SitemapBucket) == "" {
			return nil, fmt.Errorf("SITEMAP_BUCKET is required when SITEMAP_BACKEND=gcs")
		}
		return storage.NewGCSPublisher(clients.Storage, cfg.SitemapBucket, cfg.SitemapPrefix), nil
	case "local":
		if strings.TrimSpace(cfg.SitemapLocalDir) == "" {
			return nil, fmt.Errorf("SITEMAP_LOCAL_DIR is required when SITEMAP_BACKEND=local")
		}
		return storage.NewLocalPublisher(cfg.SitemapLocalDir, cfg.SitemapPrefix), nil
	default:
		return nil, fmt.Errorf("invalid SITEMAP_BACKEND %q (use gcs or local)", cfg.SitemapBackend)
	}
}

// loadStaticPages returns nil (the defaults) when no override file is configured.
func loadStaticPages(path string) ([]sitemapservice.StaticPage, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sitemapservice.LoadStaticPages(f)
}
