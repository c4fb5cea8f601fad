// Package content reads note files on behalf of tool callers.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// NotFound is recorded for paths that do not exist.
const NotFound = "File not found"

var errInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// Fetcher reads files directly by path.
type Fetcher struct {
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. A nil logger discards diagnostics.
func NewFetcher(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{logger: logger}
}

// Read maps each path to its text, an error message, or NotFound.
// Per-file failures are recorded in the map, never returned.
func (f *Fetcher) Read(paths []string) map[string]string {
	contents := make(map[string]string, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		switch {
		case err == nil && !utf8.Valid(data):
			f.logger.Warn("error reading file", "path", path, "error", errInvalidUTF8)
			contents[path] = fmt.Sprintf("Error reading file: %v", errInvalidUTF8)
		case err == nil:
			contents[path] = string(data)
		case errors.Is(err, fs.ErrNotExist):
			contents[path] = NotFound
		default:
			f.logger.Warn("error reading file", "path", path, "error", err)
			contents[path] = fmt.Sprintf("Error reading file: %v", err)
		}
	}
	return contents
}

// Fetch reads paths and renders the result as indented JSON with sorted keys.
func (f *Fetcher) Fetch(paths []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.Read(paths)); err != nil {
		return "", fmt.Errorf("encode contents: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
