package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ibrox-analytics/stats"
)

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List every player in the match table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *App) error {
				ds, f, err := reportDataset(cmd, app)
				if err != nil {
					return err
				}
				ms := f.Apply(ds.Matches)

				t := newTable(cmd.OutOrStdout())
				t.AppendHeader(table.Row{"Player", "Apps", "Starts", "Subs", "Win rate"})
				for _, p := range ds.Players {
					roles := stats.RoleBreakdown(ms, p)
					if roles.Total == 0 {
						continue
					}
					rec := stats.ResultRecord(stats.Appearances(ms, p))
					t.AppendRow(table.Row{p, roles.Total, roles.Starts, roles.Subs, pct(stats.WinRate(rec.Wins, roles.Total))})
				}
				t.Render()
				return nil
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the match table with FILE",
		Long: `Replace the whole match table with the contents of FILE. The file must
carry the Day, Month, Year and result columns. The replacement is written
to the edit log like an admin upload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			return withApp(cmd, func(app *App) error {
				if err := app.store.Replace(cmd.Context(), f); err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				ds, err := app.snapshot(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d matches (%d rows skipped) into %s\n",
					len(ds.Matches), len(ds.Rejected), app.store.Path())
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the match table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(app *App) error {
				if output == "" || output == "-" {
					return app.store.Export(cmd.Context(), cmd.OutOrStdout())
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := app.store.Export(cmd.Context(), f); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}
