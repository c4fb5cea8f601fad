package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"brain/internal/config"
	"brain/internal/content"
	"brain/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Chat with your notes in an interactive terminal UI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file.
	logPath := filepath.Join(config.DefaultDir(), "tui.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger, err := newLogger(logFile, cfg.Log.Level)
	if err != nil {
		return err
	}

	return tui.Run(tui.Config{
		Root:             cfg.Knowledge.RootPath,
		Endpoint:         cfg.Ollama.Endpoint,
		Model:            cfg.Ollama.Model,
		MaxContextLength: cfg.Ollama.MaxContextLength,
		Searcher:         newEngine(cfg, logger),
		Fetcher:          content.NewFetcher(logger.With("component", "content")),
		Logger:           logger,
	})
}
