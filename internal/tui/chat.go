package tui

import (
	"context"
	"fmt"
	"strings"

	"brain/internal/rag"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type chatState int

const (
	chatIdle chatState = iota
	chatExtracting
	chatSearching
	chatGenerating
)

func (s chatState) label() string {
	switch s {
	case chatExtracting:
		return "extracting terms..."
	case chatSearching:
		return "searching notes..."
	case chatGenerating:
		return "generating..."
	}
	return "idle"
}

type chatModel struct {
	viewport    viewport.Model
	input       textinput.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	messages    []chatMessage
	pipeline    *rag.Pipeline
	modelName   string
	showSources bool
	state       chatState
	width       int
	height      int
	initialized bool
}

type chatMessage struct {
	role    string
	content string
}

// answerMsg is sent when a pipeline run completes.
type answerMsg struct {
	resp *rag.Response
	err  error
}

// stageMsg relays pipeline progress from the background run.
type stageMsg struct {
	event rag.Event
}

func newChatModel(pipeline *rag.Pipeline, modelName string) chatModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	ti := textinput.New()
	ti.Placeholder = "Ask a question about your notes..."
	ti.CharLimit = 2000
	ti.Focus()

	return chatModel{
		spinner:     sp,
		input:       ti,
		pipeline:    pipeline,
		modelName:   modelName,
		showSources: true,
		state:       chatIdle,
	}
}

func (m *chatModel) initViewport(width, height int) {
	m.width = width
	m.height = height

	// Layout: viewport + status bar (1 line) + input (1 line) + gap (1 line).
	vpHeight := height - 3
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport = viewport.New(width, vpHeight)
	m.viewport.SetContent(dimStyle.Render("Ask a question and brain will search your notes for the answer.\n\nCommands: /help, /sources, /clear, /exit"))

	m.input.Width = width - 4

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-2),
	)
	if err == nil {
		m.renderer = r
	}

	m.initialized = true
}

func askQuestion(pipeline *rag.Pipeline, question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := pipeline.Run(context.Background(), question, rag.GenerateResponse)
		return answerMsg{resp: resp, err: err}
	}
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.initViewport(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case stageMsg:
		if m.state == chatIdle {
			return m, nil
		}
		switch msg.event.Stage {
		case rag.StageExtracting, rag.StageExtracted:
			m.state = chatExtracting
		case rag.StageSearching, rag.StageSearched, rag.StageFetching:
			m.state = chatSearching
		case rag.StageGenerating:
			m.state = chatGenerating
		}
		m.refresh()
		return m, nil

	case answerMsg:
		m.state = chatIdle
		if msg.err != nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: msg.err.Error()})
		} else {
			m.messages = append(m.messages, chatMessage{role: "assistant", content: msg.resp.Response})
			if m.showSources {
				m.messages = append(m.messages, chatMessage{role: "system", content: formatSources(msg.resp)})
			}
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if m.state != chatIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refresh()
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.state != chatIdle {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()

			switch question {
			case "/exit", "/quit":
				return m, tea.Quit
			case "/clear":
				m.messages = nil
				m.viewport.SetContent(dimStyle.Render("Conversation cleared."))
				return m, nil
			case "/sources":
				m.showSources = !m.showSources
				state := "hidden"
				if m.showSources {
					state = "shown"
				}
				m.messages = append(m.messages, chatMessage{role: "system", content: "Sources are now " + state + "."})
				m.refresh()
				return m, nil
			case "/help":
				helpText := "Commands:\n  /sources - toggle the list of matched notes\n  /clear   - clear the conversation\n  /exit    - quit\n  /help    - show this help"
				m.messages = append(m.messages, chatMessage{role: "system", content: helpText})
				m.refresh()
				return m, nil
			}

			m.messages = append(m.messages, chatMessage{role: "user", content: question})
			m.state = chatExtracting
			m.refresh()

			return m, tea.Batch(m.spinner.Tick, askQuestion(m.pipeline, question))
		}
	}

	if m.state == chatIdle {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *chatModel) refresh() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func formatSources(resp *rag.Response) string {
	if len(resp.MatchedFiles) == 0 {
		return fmt.Sprintf("No notes matched %v.", resp.SearchTerms)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sources for %v:", resp.SearchTerms)
	for i, r := range resp.MatchedFiles {
		fmt.Fprintf(&sb, "\n  %d. %s (%.2f)", i+1, r.Path, r.Relevance)
	}
	return sb.String()
}

func (m chatModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return assistantMsgStyle.Render(content)
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return assistantMsgStyle.Render(content)
	}
	return strings.TrimRight(rendered, "\n")
}

func (m chatModel) renderMessages() string {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "user":
			sb.WriteString(userMsgStyle.Render("You: ") + msg.content + "\n\n")
		case "assistant":
			sb.WriteString(m.renderMarkdown(msg.content) + "\n\n")
		case "error":
			sb.WriteString(errorStyle.Render("Error: "+msg.content) + "\n\n")
		case "system":
			sb.WriteString(dimStyle.Render(msg.content) + "\n\n")
		}
	}

	if m.state != chatIdle {
		sb.WriteString(m.spinner.View() + " " + dimStyle.Render(m.state.label()) + "\n")
	}

	return sb.String()
}

func (m chatModel) View() string {
	if !m.initialized {
		return ""
	}

	statusBar := statusBarStyle.
		Width(m.width).
		Render(fmt.Sprintf(" brain • %s • %s", m.modelName, m.state.label()))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewport.View(),
		statusBar,
		m.input.View(),
	)
}
