package rag

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TextProgress returns a progress callback that narrates each stage to w.
func TextProgress(w io.Writer) func(Event) {
	return func(e Event) {
		switch e.Stage {
		case StageExtracting:
			fmt.Fprintln(w, "Extracting search terms from query...")
		case StageExtracted:
			fmt.Fprintf(w, "Search terms: %s\n", quoteList(e.Terms))
		case StageSearching:
			fmt.Fprintln(w, "Searching files...")
		case StageSearched:
			if len(e.Results) == 0 {
				fmt.Fprintln(w, "No matching files found.")
			}
			fmt.Fprintf(w, "\nFound %d matching files:\n", len(e.Results))
			for i, r := range e.Results {
				fmt.Fprintf(w, "%d. %s (relevance: %.2f)\n", i+1, r.Path, r.Relevance)
			}
		case StageFetching:
			fmt.Fprintln(w, "\nRetrieving file contents...")
		case StageGenerating:
			fmt.Fprintln(w, "\nGenerating response...")
		}
	}
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// WriteAnswer prints the generated response under a heading.
func WriteAnswer(w io.Writer, answer string) {
	fmt.Fprintln(w, "\nResponse:")
	fmt.Fprintln(w, answer)
}

// WriteJSON writes resp as indented JSON followed by a newline.
func WriteJSON(w io.Writer, resp *Response) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
