package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"brain/internal/config"
	"brain/internal/llm"
	"brain/internal/walker"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the config, knowledge base and Ollama setup",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checker struct {
	w        io.Writer
	problems int
}

func (c *checker) ok(format string, args ...any) {
	fmt.Fprintf(c.w, "✓ "+format+"\n", args...)
}

func (c *checker) fail(format string, args ...any) {
	c.problems++
	fmt.Fprintf(c.w, "✗ "+format+"\n", args...)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	c := &checker{w: cmd.OutOrStdout()}

	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := loadConfig()
	if err != nil {
		c.fail("config: %v", err)
		fmt.Fprintln(c.w, "  run 'brain init' to create one")
		return fmt.Errorf("doctor found %d problem(s)", c.problems)
	}
	c.ok("config: %s", config.ExpandPath(path))

	checkRoot(c, cfg.Knowledge.RootPath)
	checkOllama(cmd.Context(), c, cfg)

	if c.problems > 0 {
		return fmt.Errorf("doctor found %d problem(s)", c.problems)
	}
	return nil
}

func checkRoot(c *checker, root string) {
	info, err := os.Stat(root)
	switch {
	case err != nil:
		c.fail("knowledge root: %v", err)
		return
	case !info.IsDir():
		c.fail("knowledge root: %s is not a directory", root)
		return
	}

	files, errs := walker.Walk(root, map[string]bool{"org": true})
	var count int
	var size int64
	for f := range files {
		count++
		size += f.Size
	}
	if err := <-errs; err != nil {
		c.fail("knowledge root: walk %s: %v", root, err)
		return
	}
	if count == 0 {
		c.fail("knowledge root: no .org files under %s", root)
		return
	}
	c.ok("knowledge root: %s (%d notes, %s)", root, count, llm.FormatSize(size))
}

func checkOllama(ctx context.Context, c *checker, cfg *config.Config) {
	client, err := llm.NewOllamaClient(cfg.Ollama.Endpoint, cfg.Ollama.Model, cfg.Ollama.MaxContextLength)
	if err != nil {
		c.fail("ollama: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		c.fail("ollama: %v", err)
		return
	}
	c.ok("ollama: %s (%d models)", client.BaseURL(), len(models))

	if !llm.HasModel(models, cfg.Ollama.Model) {
		c.fail("model: %s is not installed, run 'ollama pull %s'", cfg.Ollama.Model, cfg.Ollama.Model)
		return
	}
	c.ok("model: %s", cfg.Ollama.Model)
}
