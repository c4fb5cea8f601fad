package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"brain/internal/llm"
	"brain/internal/walker"

	tea "github.com/charmbracelet/bubbletea"
)

type modelStatus int

const (
	modelUnknown modelStatus = iota
	modelReady
	modelMissing
	ollamaDown
)

type welcomeModel struct {
	rootOK    bool
	rootErr   string
	noteCount int
	model     modelStatus
	modelErr  string
	ready     bool // true once the check has completed
}

// checkEnvMsg is sent after checking the knowledge base and Ollama.
type checkEnvMsg struct {
	rootOK    bool
	rootErr   string
	noteCount int
	model     modelStatus
	modelErr  string
}

func checkEnvironment(cfg Config) tea.Cmd {
	return func() tea.Msg {
		var msg checkEnvMsg

		if info, err := os.Stat(cfg.Root); err != nil {
			msg.rootErr = err.Error()
		} else if !info.IsDir() {
			msg.rootErr = fmt.Sprintf("%s is not a directory", cfg.Root)
		} else {
			msg.rootOK = true
			msg.noteCount = countNotes(cfg.Root)
		}

		client, err := llm.NewOllamaClient(cfg.Endpoint, cfg.Model, cfg.MaxContextLength)
		if err != nil {
			msg.model, msg.modelErr = ollamaDown, err.Error()
			return msg
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		models, err := client.ListModels(ctx)
		switch {
		case err != nil:
			msg.model, msg.modelErr = ollamaDown, err.Error()
		case llm.HasModel(models, cfg.Model):
			msg.model = modelReady
		default:
			msg.model = modelMissing
		}
		return msg
	}
}

func countNotes(root string) int {
	files, errs := walker.Walk(root, map[string]bool{"org": true})
	n := 0
	for range files {
		n++
	}
	<-errs
	return n
}

func (m welcomeModel) Update(msg tea.Msg) (welcomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case checkEnvMsg:
		m.rootOK = msg.rootOK
		m.rootErr = msg.rootErr
		m.noteCount = msg.noteCount
		m.model = msg.model
		m.modelErr = msg.modelErr
		m.ready = true
	}
	return m, nil
}

func (m welcomeModel) canChat() bool {
	return m.rootOK && m.model == modelReady
}

func (m welcomeModel) needsModel() bool {
	return m.rootOK && m.model == modelMissing
}

func (m welcomeModel) View(cfg Config) string {
	s := "\n"
	s += titleStyle.Render("  ◆ Brain") + "\n"
	s += subtitleStyle.Render("  Ask questions of your org notes") + "\n\n"

	if !m.ready {
		s += dimStyle.Render("  Checking knowledge base and Ollama...") + "\n"
		return s
	}

	if m.rootOK {
		s += successStyle.Render(fmt.Sprintf("  ✓ %d notes in %s", m.noteCount, cfg.Root)) + "\n"
	} else {
		s += errorStyle.Render("  ✗ Knowledge base unavailable") + "\n"
		s += dimStyle.Render("    "+m.rootErr) + "\n"
	}

	switch m.model {
	case modelReady:
		s += successStyle.Render("  ✓ Model "+cfg.Model+" ready") + "\n"
	case modelMissing:
		s += warnStyle.Render("  ⚠ Model "+cfg.Model+" is not installed") + "\n"
	case ollamaDown:
		s += errorStyle.Render("  ✗ Ollama unreachable at "+cfg.Endpoint) + "\n"
		s += dimStyle.Render("    "+m.modelErr) + "\n"
	}

	s += "\n"
	switch {
	case m.canChat():
		s += dimStyle.Render("  Press Enter to start, m to pick another model") + "\n"
	case m.needsModel():
		s += dimStyle.Render("  Press Enter to pick an installed model") + "\n"
	default:
		s += dimStyle.Render("  Fix the problems above and restart. Press q to quit.") + "\n"
	}
	return s
}
