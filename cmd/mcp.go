package cmd

import (
	"log/slog"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing note search tools",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	logger = logger.With("session", uuid.NewString())

	d, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	s := d.NewMCPServer(cfg.MCP.ServerName, Version)
	logger.Info("serving mcp", "name", cfg.MCP.ServerName, "root", cfg.Knowledge.RootPath)
	return mcpserver.ServeStdio(s,
		mcpserver.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)
}
