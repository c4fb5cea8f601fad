package tui

import (
	"log/slog"

	"brain/internal/llm"
	"brain/internal/rag"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents which screen is active.
type ViewState int

const (
	ViewWelcome ViewState = iota
	ViewSetup
	ViewChat
)

// programRef is an indirect pointer to the tea.Program so background goroutines
// can send messages. It must be set after tea.NewProgram returns but before Run.
type programRef struct {
	p *tea.Program
}

func (r *programRef) send(msg tea.Msg) {
	if r != nil && r.p != nil {
		r.p.Send(msg)
	}
}

// Config holds configuration passed from the CLI layer.
type Config struct {
	Root             string
	Endpoint         string
	Model            string
	MaxContextLength int

	Searcher rag.Searcher
	Fetcher  rag.ContentFetcher
	Logger   *slog.Logger

	// program is set internally so background goroutines can send messages.
	program *programRef
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state  ViewState
	config Config
	width  int
	height int

	welcome welcomeModel
	setup   setupModel
	chat    chatModel
	err     error
}

// New creates a new TUI model with the given config.
func New(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return Model{
		state:  ViewWelcome,
		config: cfg,
	}
}

func (m Model) Init() tea.Cmd {
	return checkEnvironment(m.config)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == ViewChat {
			var c tea.Cmd
			m.chat, c = m.chat.Update(msg)
			return m, c
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != ViewChat {
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd

	switch m.state {
	case ViewWelcome:
		m.welcome, cmd = m.welcome.Update(msg)
		if cmd != nil {
			return m, cmd
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && m.welcome.ready {
			switch {
			case keyMsg.Type == tea.KeyEnter && m.welcome.canChat():
				return m, m.transitionToChat()
			case keyMsg.String() == "m" || (keyMsg.Type == tea.KeyEnter && m.welcome.needsModel()):
				m.state = ViewSetup
				m.setup = setupModel{}
				return m, fetchModels(m.config)
			}
		}

	case ViewSetup:
		m.setup, cmd = m.setup.Update(msg, m.config)
		if cmd != nil {
			return m, cmd
		}
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && m.setup.loaded && m.setup.err == nil {
			if sel := m.setup.selectedModel(); sel != "" {
				m.config.Model = sel
				m.config.Logger.Info("chat model selected", "model", sel)
				return m, m.transitionToChat()
			}
		}

	case ViewChat:
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) transitionToChat() tea.Cmd {
	client, err := llm.NewOllamaClient(m.config.Endpoint, m.config.Model, m.config.MaxContextLength)
	if err != nil {
		m.err = err
		return nil
	}

	ref := m.config.program
	pipeline := &rag.Pipeline{
		LLM:      client,
		Searcher: m.config.Searcher,
		Fetcher:  m.config.Fetcher,
		Logger:   m.config.Logger,
		Progress: func(e rag.Event) {
			ref.send(stageMsg{event: e})
		},
	}

	m.chat = newChatModel(pipeline, m.config.Model)
	m.chat.initViewport(m.width, m.height)
	m.state = ViewChat
	return nil
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}

	switch m.state {
	case ViewWelcome:
		return m.welcome.View(m.config)
	case ViewSetup:
		return m.setup.View(m.config)
	case ViewChat:
		return m.chat.View()
	}
	return ""
}

// Run starts the TUI program.
func Run(cfg Config) error {
	ref := &programRef{}
	cfg.program = ref
	model := New(cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())
	ref.p = p
	_, err := p.Run()
	return err
}
