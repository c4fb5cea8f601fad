package search

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"unicode/utf8"

	"brain/internal/walker"
)

// noteExtensions lists the file extensions eligible for search.
var noteExtensions = map[string]bool{"org": true}

// Result is a file with its relevance score.
type Result struct {
	Path      string  `json:"path"`
	Relevance float64 `json:"relevance"`
}

// Config holds the engine configuration.
type Config struct {
	Root       string
	MaxResults int
	// Workers bounds how many files are scored at once. Zero means NumCPU.
	Workers int
	Logger  *slog.Logger
}

// Engine ranks note files under a fixed root against keyword sets.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	config Config
}

// New creates an Engine. A nil Logger discards diagnostics.
func New(cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{config: cfg}
}

// Root returns the knowledge base root.
func (e *Engine) Root() string { return e.config.Root }

// MaxResults returns the result limit.
func (e *Engine) MaxResults() int { return e.config.MaxResults }

// Search scores every note under the root against keywords and returns at
// most MaxResults files, highest relevance first and ties ordered by path.
// Files that cannot be read as UTF-8 text are skipped.
func (e *Engine) Search(keywords []string) ([]Result, error) {
	root := e.config.Root
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	patterns, err := Compile(keywords)
	if err != nil {
		return nil, err
	}
	results := []Result{}
	if len(patterns) == 0 || e.config.MaxResults == 0 {
		return results, nil
	}

	fileCh, walkErrCh := walker.Walk(root, noteExtensions)

	// Each worker owns one slot, so scoring shares nothing until the merge.
	partials := make([][]Result, e.config.Workers)
	var wg sync.WaitGroup
	for i := range e.config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fi := range fileCh {
				text, err := readText(fi.Path)
				if err != nil {
					e.config.Logger.Debug("skipping unreadable file", "path", fi.Path, "error", err)
					continue
				}
				if score := Score(text, patterns); score > 0 {
					partials[i] = append(partials[i], Result{Path: fi.Path, Relevance: score})
				}
			}
		}()
	}
	wg.Wait()

	if err := <-walkErrCh; err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	for _, p := range partials {
		results = append(results, p...)
	}
	Rank(results)
	if e.config.MaxResults > 0 && len(results) > e.config.MaxResults {
		results = results[:e.config.MaxResults]
	}
	return results, nil
}

// Rank sorts results by relevance descending, then by path ascending.
func Rank(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].Path < results[j].Path
	})
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8", path)
	}
	return string(data), nil
}
