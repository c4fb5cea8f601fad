package cmd

import (
	"fmt"
	"os"

	"brain/internal/config"

	"github.com/spf13/cobra"
)

var (
	flagInitRoot  string
	flagInitForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagInitRoot, "root", "", "knowledge base directory (default ~/org)")
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	path = config.ExpandPath(path)

	if _, err := os.Stat(path); err == nil && !flagInitForce {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.Defaults()
	if flagInitRoot != "" {
		cfg.Knowledge.RootPath = flagInitRoot
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
