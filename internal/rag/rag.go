// Package rag runs the ask pipeline: extract search terms from a question,
// find matching notes, and answer from their contents.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"brain/internal/search"
)

// TermExtractor pulls search keywords out of a natural-language query.
type TermExtractor interface {
	ExtractTerms(ctx context.Context, query string) ([]string, error)
}

// Generator answers a query from retrieved note contents.
type Generator interface {
	Generate(ctx context.Context, query, notes string) (string, error)
}

// LLM is the model backend the pipeline talks to.
type LLM interface {
	TermExtractor
	Generator
}

// Searcher ranks note files against keywords.
type Searcher interface {
	Search(keywords []string) ([]search.Result, error)
}

// ContentFetcher renders the contents of paths for the model.
type ContentFetcher interface {
	Fetch(paths []string) (string, error)
}

// Response is the outcome of one pipeline run. Fields past the stopping
// point of the mode are left empty.
type Response struct {
	Query        string          `json:"query"`
	SearchTerms  []string        `json:"search_terms"`
	MatchedFiles []search.Result `json:"matched_files"`
	Response     string          `json:"response"`
}

// Pipeline wires the model, the searcher, and the content fetcher.
type Pipeline struct {
	LLM      LLM
	Searcher Searcher
	Fetcher  ContentFetcher
	Logger   *slog.Logger

	// Progress receives step notifications for interactive output.
	// Nil disables them.
	Progress func(Event)
}

// Stage identifies a step of the pipeline.
type Stage int

const (
	StageExtracting Stage = iota
	StageExtracted
	StageSearching
	StageSearched
	StageFetching
	StageGenerating
)

// Event reports progress. Terms is set from StageExtracted on, Results
// from StageSearched on.
type Event struct {
	Stage   Stage
	Terms   []string
	Results []search.Result
}

func (p *Pipeline) emit(e Event) {
	if p.Progress != nil {
		p.Progress(e)
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// Run executes the pipeline for query up to the point mode asks for.
func (p *Pipeline) Run(ctx context.Context, query string, mode Mode) (*Response, error) {
	log := p.logger()
	resp := &Response{
		Query:        query,
		SearchTerms:  []string{},
		MatchedFiles: []search.Result{},
	}

	p.emit(Event{Stage: StageExtracting})
	terms, err := p.LLM.ExtractTerms(ctx, query)
	if err != nil {
		return nil, err
	}
	if terms != nil {
		resp.SearchTerms = terms
	}
	log.Debug("extracted search terms", "terms", terms)
	p.emit(Event{Stage: StageExtracted, Terms: resp.SearchTerms})
	if mode == ExtractOnly {
		return resp, nil
	}

	p.emit(Event{Stage: StageSearching, Terms: resp.SearchTerms})
	results, err := p.Searcher.Search(resp.SearchTerms)
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}
	if results != nil {
		resp.MatchedFiles = results
	}
	log.Debug("search complete", "matches", len(results))
	p.emit(Event{Stage: StageSearched, Terms: resp.SearchTerms, Results: resp.MatchedFiles})
	if mode == SearchOnly {
		return resp, nil
	}

	paths := make([]string, len(resp.MatchedFiles))
	for i, r := range resp.MatchedFiles {
		paths[i] = r.Path
	}

	p.emit(Event{Stage: StageFetching, Terms: resp.SearchTerms, Results: resp.MatchedFiles})
	notes, err := p.Fetcher.Fetch(paths)
	if err != nil {
		return nil, fmt.Errorf("get contents: %w", err)
	}

	p.emit(Event{Stage: StageGenerating, Terms: resp.SearchTerms, Results: resp.MatchedFiles})
	answer, err := p.LLM.Generate(ctx, query, notes)
	if err != nil {
		return nil, err
	}
	resp.Response = answer
	return resp, nil
}
