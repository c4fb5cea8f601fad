package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"brain/internal/content"
	"brain/internal/llm"
	"brain/internal/rag"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagMode     = rag.GenerateResponse
	flagFormat   = rag.Text
	flagMaxFiles int
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer a question from your notes",
	Long: `Extract search terms from the query with the configured Ollama model,
rank matching .org files under the knowledge root, and answer the query
using only their contents.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Var(&flagMode, "mode", "how far to run: extract-only, search-only, generate-response")
	askCmd.Flags().Var(&flagFormat, "format", "output format: text or json")
	askCmd.Flags().IntVar(&flagMaxFiles, "max-files", 0, "maximum number of files to use (overrides config)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-files") {
		if flagMaxFiles < 0 {
			return fmt.Errorf("--max-files must not be negative")
		}
		cfg.Knowledge.MaxFiles = flagMaxFiles
	}

	client, err := llm.NewOllamaClient(cfg.Ollama.Endpoint, cfg.Ollama.Model, cfg.Ollama.MaxContextLength)
	if err != nil {
		return fmt.Errorf("create ollama client: %w", err)
	}

	out := cmd.OutOrStdout()
	pipeline := &rag.Pipeline{
		LLM:      client,
		Searcher: newEngine(cfg, logger),
		Fetcher:  content.NewFetcher(logger.With("component", "content")),
		Logger:   logger,
	}
	if flagFormat == rag.Text {
		pipeline.Progress = rag.TextProgress(out)
	}

	resp, err := pipeline.Run(cmd.Context(), args[0], flagMode)
	if err != nil {
		return err
	}

	if flagFormat == rag.JSON {
		return rag.WriteJSON(out, resp)
	}
	if flagMode == rag.GenerateResponse {
		rag.WriteAnswer(out, renderAnswer(out, resp.Response))
	}
	return nil
}

// renderAnswer formats markdown for display when out is a terminal.
func renderAnswer(out io.Writer, answer string) string {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return answer
	}
	width := 80
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err != nil {
		return answer
	}
	rendered, err := r.Render(answer)
	if err != nil {
		return answer
	}
	return strings.TrimRight(rendered, "\n")
}
