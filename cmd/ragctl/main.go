// Command ragctl ingests, searches and manages the Mansahay knowledge base
// without going through the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mansahay-rag/internal/app"
	"mansahay-rag/internal/config"
	"mansahay-rag/internal/service"
	"mansahay-rag/internal/vectorstore"
)

// collectionInspector reports vector collection details for `ragctl stats`.
type collectionInspector interface {
	GetCollectionInfo(ctx context.Context, collection string) (*vectorstore.CollectionInfo, error)
}

// deps are the services a command runs against.
type deps struct {
	ingest     service.IngestService
	search     service.SearchService
	resources  service.ResourceService
	vectors    collectionInspector
	collection string
}

// loadFunc builds deps and returns a function releasing them.
type loadFunc func(ctx context.Context) (*deps, func() error, error)

// loadApp wires the real services from the environment.
func loadApp(ctx context.Context) (*deps, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	// Logs go to stderr so command output stays pipeable.
	slog.SetDefault(app.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return &deps{
		ingest:     a.Ingest,
		search:     a.Search,
		resources:  a.Resources,
		vectors:    a.VectorStore,
		collection: cfg.QdrantCollection,
	}, a.Close, nil
}

func newRootCmd(load loadFunc) *cobra.Command {
	var (
		d       *deps
		cleanup func() error
	)

	root := &cobra.Command{
		Use:           "ragctl",
		Short:         "Manage the Mansahay knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			d, cleanup, err = load(cmd.Context())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cleanup == nil {
				return nil
			}
			return cleanup()
		},
	}

	get := func() *deps { return d }
	root.AddCommand(
		newIngestCmd(get),
		newSearchCmd(get),
		newDeleteCmd(get),
		newResourcesCmd(get),
		newStatsCmd(get),
	)
	return root
}

func main() {
	root := newRootCmd(loadApp)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
