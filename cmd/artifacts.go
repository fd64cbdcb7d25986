package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"libgenui_server/internal/utils"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List stored artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		artifacts, err := a.artifacts.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tFILES\tTITLE")
		for _, art := range artifacts {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", art.ID, art.CreatedAt.Format("2006-01-02 15:04"), len(art.StoredFiles()), utils.SnippetTitle(art.Description))
		}
		return w.Flush()
	},
}
