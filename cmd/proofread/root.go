package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/youngsunson/updatev2/common/id"
	"github.com/youngsunson/updatev2/common/logger"
	"github.com/youngsunson/updatev2/core/config"
	"github.com/youngsunson/updatev2/internal/settings"
)

var (
	verbose      bool
	settingsPath string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "proofread",
	Short: "Proofread Bengali text from the command line",
	Long: `proofread checks Bengali documents for spelling, register mixing,
punctuation and euphony issues, and optionally suggests tone and
sadhu/cholito conversions. It shares its settings with the side panel.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.ServiceTypeCLI)
		if err != nil {
			return err
		}

		// Logs go to stderr so stdout carries only results.
		if verbose {
			logger.SetupWriter(cfg, os.Stderr)
		} else {
			opts := &slog.HandlerOptions{Level: slog.LevelWarn}
			slog.SetDefault(slog.New(logger.NewTraceHandler(slog.NewTextHandler(os.Stderr, opts))))
		}

		return id.Init(1)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default ~/.config/bhasha-mitra/settings.yaml)")
}

// openSettings loads the settings file named by --settings, SETTINGS_FILE or
// the default location, in that order.
func openSettings(ctx context.Context) (*settings.FileStore, *settings.Live, error) {
	path := settingsPath
	if path == "" {
		path = cfg.Settings.FilePath
	}
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, nil, err
		}
	}

	store := settings.NewFileStore(path)
	live, err := settings.NewLive(ctx, store, cfg.Analysis.APIKey)
	if err != nil {
		return nil, nil, err
	}
	return store, live, nil
}
