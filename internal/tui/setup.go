package tui

import (
	"context"
	"fmt"
	"time"

	"brain/internal/llm"

	tea "github.com/charmbracelet/bubbletea"
)

type setupModel struct {
	models []llm.Model
	cursor int
	loaded bool
	err    error
}

// fetchModelsMsg is sent when models have been fetched from Ollama.
type fetchModelsMsg struct {
	models []llm.Model
	err    error
}

func fetchModels(cfg Config) tea.Cmd {
	return func() tea.Msg {
		client, err := llm.NewOllamaClient(cfg.Endpoint, cfg.Model, cfg.MaxContextLength)
		if err != nil {
			return fetchModelsMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		models, err := client.ListModels(ctx)
		return fetchModelsMsg{models: models, err: err}
	}
}

func (m setupModel) Update(msg tea.Msg, cfg Config) (setupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchModelsMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.models = msg.models
		for i, model := range m.models {
			if llm.HasModel([]llm.Model{model}, cfg.Model) {
				m.cursor = i
				break
			}
		}

	case tea.KeyMsg:
		if !m.loaded || m.err != nil {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.models)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m setupModel) View(cfg Config) string {
	s := "\n"
	s += titleStyle.Render("  Select Chat Model") + "\n"

	if !m.loaded {
		s += "\n" + dimStyle.Render("  Fetching models from Ollama...") + "\n"
		return s
	}

	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("  Error: %v", m.err)) + "\n\n"
		s += dimStyle.Render("  Make sure Ollama is running at "+cfg.Endpoint+" and try again.") + "\n"
		s += dimStyle.Render("  Press q to quit.") + "\n"
		return s
	}

	if len(m.models) == 0 {
		s += "\n" + warnStyle.Render("  No models found in Ollama.") + "\n"
		s += dimStyle.Render("  Pull a model first: ollama pull "+cfg.Model) + "\n"
		return s
	}

	s += dimStyle.Render("  Used to extract search terms and answer questions") + "\n\n"
	for i, model := range m.models {
		cursor := "  "
		style := listItemStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		s += fmt.Sprintf("  %s%s\n", cursor, style.Render(fmt.Sprintf("%s (%s)", model.Name, llm.FormatSize(model.Size))))
	}
	s += "\n"
	s += helpStyle.Render("  ↑/↓ navigate • Enter select") + "\n"
	return s
}

func (m setupModel) selectedModel() string {
	if m.cursor < len(m.models) {
		return m.models[m.cursor].Name
	}
	return ""
}
