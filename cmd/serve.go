package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search_files and get_contents over line-delimited JSON-RPC on stdio",
	Long: `Read one JSON-RPC request per line from stdin and write one response per
line to stdout until stdin closes. Methods: list_tools, call_tool.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	logger = logger.With("session", uuid.NewString())

	d, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("serving", "root", cfg.Knowledge.RootPath, "max_files", cfg.Knowledge.MaxFiles)
	if err := d.Serve(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return err
	}
	logger.Info("input closed, shutting down")
	return nil
}
