package sitemap

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/apps/cli/internal/cliutil"
	bandirepo "github.com/concoro/concoro-platform/domains/bandi/be/repo"
	bandiservice "github.com/concoro/concoro-platform/domains/bandi/be/service"
	sitemapservice "github.com/concoro/concoro-platform/domains/sitemap/be/service"
	"github.com/concoro/concoro-platform/platform/go/gcp"
	"github.com/concoro/concoro-platform/platform/go/metrics"
	"github.com/concoro/concoro-platform/platform/go/requesttrace"
	"github.com/concoro/concoro-platform/platform/go/storage"
)

// Command groups sitemap utilities.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Build and publish the static sitemap",
	}
	cmd.AddCommand(generateCommand())
	return cmd
}

type generateOptions struct {
	baseURL      string
	file         string
	project      string
	credentials  string
	collection   string
	activeStatus string
	staticPages  string
	output       string
	bucket       string
	prefix       string
}

func generateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render sitemap-static.xml from an export or Firestore; write it to stdout, a directory or a bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cliutil.Logger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runGenerate(cmd, opts, logger)
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "base-url", "https://www.concoro.it", "public site origin prefixed to every path")
	cmd.Flags().StringVar(&opts.file, "file", "", "JSON export of the concorsi collection")
	cmd.Flags().StringVar(&opts.project, "project", "", "Google Cloud project to read Firestore from")
	cmd.Flags().StringVar(&opts.credentials, "credentials", os.Getenv("FIREBASE_CONFIG"), "service account JSON (defaults to FIREBASE_CONFIG)")
	cmd.Flags().StringVar(&opts.collection, "collection", bandirepo.DefaultCollection, "Firestore collection")
	cmd.Flags().StringVar(&opts.activeStatus, "active-status", bandirepo.DefaultActiveStatus, "Stato value of listed bandi")
	cmd.Flags().StringVar(&opts.staticPages, "static-pages", "", "YAML file overriding the static page list")
	cmd.Flags().StringVar(&opts.output, "output", "", "directory to write sitemap-static.xml into")
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "Cloud Storage bucket to upload sitemap-static.xml to")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "object prefix inside --output or --bucket")

	cmd.MarkFlagsOneRequired("file", "project")
	cmd.MarkFlagsMutuallyExclusive("file", "project")
	cmd.MarkFlagsMutuallyExclusive("output", "bucket")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions, logger *zap.Logger) error {
	audit := cliutil.SystemAudit()
	ctx := requesttrace.IntoContext(cmd.Context(), audit)

	var clients *gcp.Clients
	if opts.project != "" || opts.bucket != "" {
		var err error
		clients, err = gcp.NewClients(ctx, gcp.Config{CredentialsFile: opts.credentials, ProjectID: opts.project}, gcp.Want{
			Firestore: opts.project != "",
			Storage:   opts.bucket != "",
		})
		if err != nil {
			return err
		}
		defer func() { _ = clients.Close() }()
	}

	var repo bandirepo.Repository
	if opts.file != "" {
		records, err := cliutil.LoadExportFile(opts.file)
		if err != nil {
			return err
		}
		repo = bandirepo.NewMemoryRepository(opts.activeStatus, records...)
	} else {
		repo = bandirepo.NewFirestoreRepository(clients.Firestore, bandirepo.FirestoreConfig{
			Collection:   opts.collection,
			ActiveStatus: opts.activeStatus,
		})
	}

	pages, err := loadStaticPages(opts.staticPages)
	if err != nil {
		return err
	}

	var publisher storage.Publisher
	switch {
	case opts.bucket != "":
		publisher = storage.NewGCSPublisher(clients.Storage, opts.bucket, opts.prefix)
	case opts.output != "":
		publisher = storage.NewLocalPublisher(opts.output, opts.prefix)
	}

	m := metrics.New()
	svc := sitemapservice.New(bandiservice.New(repo, logger, m), publisher, sitemapservice.Config{
		BaseURL:     opts.baseURL,
		StaticPages: pages,
	}, logger, m)

	if publisher == nil {
		doc, err := svc.Render(ctx)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(doc)
		return err
	}

	loc, err := svc.Publish(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), loc.String())
	return nil
}

func loadStaticPages(path string) ([]sitemapservice.StaticPage, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open static pages: %w", err)
	}
	defer f.Close()

	pages, err := sitemapservice.LoadStaticPages(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return pages, nil
}
