package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newDeleteCmd(get func() *deps) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "delete [filename]",
		Short: "Delete every chunk ingested from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := get().resources.DeleteBySource(cmd.Context(), collection, args[0])
			if err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}
			cmd.Printf("Deleted %d resource(s), %d chunk(s) for %s\n", res.Resources, res.Chunks, args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "collection (default from QDRANT_COLLECTION)")
	return cmd
}

func newResourcesCmd(get func() *deps) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List ingested resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := get().resources.List(cmd.Context(), collection)
			if err != nil {
				return fmt.Errorf("failed to list resources: %w", err)
			}
			if len(list) == 0 {
				cmd.Println("No resources.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSOURCE\tKIND\tCHUNKS\tUPLOADED")
			for _, r := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Source, r.Kind, r.ChunkCount, r.UploadedAt.Format(time.DateTime))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "collection (default from QDRANT_COLLECTION)")
	return cmd
}

func newStatsCmd(get func() *deps) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show vector collection and registry statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := get()
			name := collection
			if name == "" {
				name = d.collection
			}

			info, err := d.vectors.GetCollectionInfo(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("failed to get collection info: %w", err)
			}
			stats, err := d.resources.Stats(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("failed to get registry stats: %w", err)
			}

			cmd.Printf("Collection:  %s\n", name)
			cmd.Printf("Status:      %s\n", info.Status)
			cmd.Printf("Vector size: %d\n", info.VectorSize)
			cmd.Printf("Points:      %d\n", info.PointsCount)
			cmd.Printf("Resources:   %d (%d sources)\n", stats.Resources, stats.Sources)
			cmd.Printf("Chunks:      %d\n", stats.Chunks)
			if int(info.PointsCount) != stats.Chunks {
				cmd.Printf("Note: %d point(s) are not tracked by the registry\n", int(info.PointsCount)-stats.Chunks)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&collection, "collection", "c", "", "collection (default from QDRANT_COLLECTION)")
	return cmd
}
