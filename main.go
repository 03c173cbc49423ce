package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "ibrox",
		Short: "Ibrox Analytics - Rangers match and player statistics",
		Long: `Ibrox Analytics reads a CSV of Rangers matches and line-ups and reports
per-player appearances, results, form, momentum and partnerships.

Run "ibrox serve" for the web dashboard or use the report commands
directly from the terminal.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded", "data", cfg.DataFile, "database", cfg.Database)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+DefaultConfigFile+")")
	rootCmd.PersistentFlags().String("data", "", "Path to the match CSV (default: "+DefaultDataFile+")")
	rootCmd.PersistentFlags().String("database", "", "Path to the edit log database (default: "+DefaultDatabase+")")
	rootCmd.PersistentFlags().String("season", "", "Only count matches from this season tag")
	rootCmd.PersistentFlags().String("competition", "", "Only count matches from this competition")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newH2HCmd())
	rootCmd.AddCommand(newTeamCmd())
	rootCmd.AddCommand(newSeasonCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Example: `  # Serve the default CSV on port 8080
  ibrox serve

  # Serve another file on a custom port
  ibrox serve --data matches.csv --port 3000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			logger := getLogger(cmd.Context())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if cfg.AdminPassword == "" {
				logger.Warn("admin editing disabled, set IBROX_ADMIN_PASSWORD to enable it")
			}
			return NewServer(app).Serve(ctx)
		},
	}

	cmd.Flags().Int("port", DefaultPort, "Port to serve on")
	cmd.Flags().Bool("watch", true, "Reload when the CSV changes on disk")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Ibrox Analytics v%s\n", Version)
		},
	}
}

// withApp opens the app for a one-shot command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(*App) error) error {
	app, err := newApp(cmd.Context(), getConfig(cmd.Context()), getLogger(cmd.Context()))
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}
