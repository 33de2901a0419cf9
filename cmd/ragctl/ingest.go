package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mansahay-rag/internal/loader"
	"mansahay-rag/internal/service"
)

type ingestTarget struct {
	path     string
	filename string
}

func newIngestCmd(get func() *deps) *cobra.Command {
	var (
		dir        string
		collection string
	)

	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Ingest documents into the knowledge base",
		Long: `Loads, chunks, embeds and stores PDF, Markdown and text files.
Files given as arguments are stored under their base name; files found with
--dir are stored under their path relative to the directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := make([]ingestTarget, 0, len(args))
			for _, arg := range args {
				targets = append(targets, ingestTarget{path: arg, filename: filepath.Base(arg)})
			}
			if dir != "" {
				files, err := loader.Scan(cmd.Context(), dir)
				if err != nil {
					return err
				}
				for _, f := range files {
					targets = append(targets, ingestTarget{path: f.AbsPath, filename: f.RelPath})
				}
			}
			if len(targets) == 0 {
				return fmt.Errorf("nothing to ingest: pass files or --dir")
			}

			d := get()
			failed := 0
			for _, t := range targets {
				res, err := d.ingest.IngestFile(cmd.Context(), service.IngestFileRequest{
					Path:       t.path,
					Filename:   t.filename,
					Collection: collection,
				})
				if err != nil {
					failed++
					cmd.PrintErrf("FAIL %s: %v\n", t.filename, err)
					continue
				}
				cmd.Printf("ok   %s (%d chunks, id %s)\n", res.Source, res.Chunks, res.ResourceID)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(targets))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "ingest every supported file under this directory")
	cmd.Flags().StringVarP(&collection, "collection", "c", "", "target collection (default from QDRANT_COLLECTION)")
	return cmd
}
