package chatcmder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/shelf/pkg/cliui"
	"github.com/papercomputeco/shelf/pkg/dotdir"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"

	// headerHeight and footerHeight are the rows around the transcript.
	headerHeight = 2
	footerHeight = 4
)

var (
	chatTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	chatMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	chatUserStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	chatAsstStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	chatErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// asker answers a question; satisfied by *client.Client.
type asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

// historyStore persists the transcript between sessions.
type historyStore struct {
	save  func(*dotdir.ChatHistory) error
	clear func() error
}

type chatKeyMap struct {
	Send key.Binding
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Up, k.Down, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Send, k.Up, k.Down, k.Quit}}
}

func defaultKeyMap() chatKeyMap {
	return chatKeyMap{
		Send: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Up:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		Down: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Quit: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

type answerMsg struct {
	question string
	answer   string
	err      error
}

type chatModel struct {
	ctx     context.Context
	api     asker
	store   historyStore
	history *dotdir.ChatHistory
	target  string
	logger  *slog.Logger

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     chatKeyMap

	waiting bool
	lastErr error
	width   int
}

func newChatModel(
	ctx context.Context,
	api asker,
	store historyStore,
	history *dotdir.ChatHistory,
	target string,
	logger *slog.Logger,
) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about products or orders..."
	input.Prompt = chatUserStyle.Render("you> ")
	input.CharLimit = 2000
	input.Focus()

	return chatModel{
		ctx:      ctx,
		api:      api,
		store:    store,
		history:  history,
		target:   target,
		logger:   logger,
		input:    input,
		viewport: viewport.New(80, 20),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     defaultKeyMap(),
		width:    80,
	}
}

func (m chatModel) Init() bubbletea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.input.Width = max(msg.Width-8, 10)
		m.refresh()
		return m, nil

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.lastErr = msg.err
			m.logger.Debug("ask failed", "error", msg.err)
			return m, nil
		}
		m.lastErr = nil
		m.history.Messages = append(m.history.Messages,
			dotdir.ChatMessage{Role: roleUser, Content: msg.question},
			dotdir.ChatMessage{Role: roleAssistant, Content: msg.answer},
		)
		if err := m.store.save(m.history); err != nil {
			m.lastErr = err
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m chatModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, bubbletea.Quit
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd bubbletea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.Send):
		return m.submit()
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (bubbletea.Model, bubbletea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.waiting {
		return m, nil
	}
	m.input.SetValue("")

	switch question {
	case "/exit":
		return m, bubbletea.Quit
	case "/clear":
		m.history.Messages = nil
		if err := m.store.clear(); err != nil {
			m.lastErr = err
		}
		m.refresh()
		return m, nil
	}

	m.waiting = true
	m.lastErr = nil
	return m, bubbletea.Batch(m.askCmd(question), m.spinner.Tick)
}

func (m chatModel) askCmd(question string) bubbletea.Cmd {
	api, ctx := m.api, m.ctx
	return func() bubbletea.Msg {
		answer, err := api.Ask(ctx, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// refresh re-renders the transcript into the viewport and scrolls to the
// newest message.
func (m *chatModel) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m chatModel) transcript() string {
	if len(m.history.Messages) == 0 {
		return chatMutedStyle.Render("No messages yet.")
	}

	var b strings.Builder
	for _, msg := range m.history.Messages {
		switch msg.Role {
		case roleUser:
			b.WriteString(chatUserStyle.Render("you> "))
			b.WriteString(msg.Content)
			b.WriteString("\n")
		default:
			b.WriteString(chatAsstStyle.Render("shelf>"))
			b.WriteString("\n")
			b.WriteString(renderAnswer(msg.Content))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderAnswer(content string) string {
	rendered, err := cliui.RenderMarkdown(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(chatTitleStyle.Render("shelf chat"))
	b.WriteString("  ")
	b.WriteString(chatMutedStyle.Render(m.target))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.waiting:
		b.WriteString(m.spinner.View() + chatMutedStyle.Render(" thinking..."))
	case m.lastErr != nil:
		b.WriteString(chatErrorStyle.Render(cliui.FailMark + " " + m.lastErr.Error()))
	}
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
