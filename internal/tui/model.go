package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"librarian/internal/domain"
	"librarian/internal/moderation"
	"librarian/internal/service"
	"librarian/internal/watch"
)

// LibrarianPort is the chat-facing subset of the recommendation service.
type LibrarianPort interface {
	Ask(ctx context.Context, query, model string) (*service.TurnResult, error)
	Models() []string
	DefaultModel() string
}

// IllustratorPort renders an image for a reply and returns the file path.
type IllustratorPort interface {
	FromReply(ctx context.Context, reply string) (string, error)
}

type turnMsg struct {
	query  string
	result *service.TurnResult
	err    error
}

type imageMsg struct {
	path string
	err  error
}

type driftMsg watch.Event

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx         context.Context
	librarian   LibrarianPort
	gate        domain.ProfanityGate
	illustrator IllustratorPort
	drift       <-chan watch.Event

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	history   []domain.ConversationTurn
	lastQuery string
	lastReply string
	model     string
	status    string
	busy      bool
	ready     bool
}

// Options wires optional collaborators into the chat.
type Options struct {
	Illustrator IllustratorPort
	Drift       <-chan watch.Event
}

// New creates a new chat model instance.
func New(ctx context.Context, librarian LibrarianPort, gate domain.ProfanityGate, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ce fel de carte cauti?"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	if gate == nil {
		gate = moderation.AllowAll{}
	}
	return Model{
		ctx:         ctx,
		librarian:   librarian,
		gate:        gate,
		illustrator: opts.Illustrator,
		drift:       opts.Drift,
		input:       ti,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		model:       librarian.DefaultModel(),
		status:      "Enter trimite, Tab schimba modelul, Ctrl+G genereaza o ilustratie, Esc iese.",
	}
}

// Init starts the cursor blink and, when configured, corpus drift reporting.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitDrift())
}

func (m Model) waitDrift() tea.Cmd {
	if m.drift == nil {
		return nil
	}
	ch := m.drift
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return driftMsg(ev)
	}
}

// Update handles key, window and turn events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input line
		vh := msg.Height - reserved - ch
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, vh)
		m.refresh()
		return m, nil

	case turnMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Eroare: " + msg.err.Error()
			m.refresh()
			return m, nil
		}
		m.lastQuery = msg.query
		m.lastReply = ""
		if msg.result.State == service.Completed {
			m.lastReply = msg.result.Reply
		}
		m.history = append(m.history, domain.ConversationTurn{Role: domain.RoleAssistant, Content: msg.result.Reply})
		m.status = fmt.Sprintf("%s · %s", msg.result.State, msg.result.Model)
		m.refresh()
		return m, nil

	case imageMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Eroare generare imagine: " + msg.err.Error()
		} else {
			m.status = "Imagine generata: " + msg.path
		}
		return m, nil

	case driftMsg:
		m.status = fmt.Sprintf("Fisierul corpus a fost %s. Ruleaza `librarian seed --force` pentru reindexare.", driftVerb(msg.Operation))
		return m, m.waitDrift()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.cycleModel()
			return m, nil
		case tea.KeyCtrlG:
			return m.illustrate()
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) cycleModel() {
	models := m.librarian.Models()
	if len(models) == 0 {
		return
	}
	next := models[0]
	for i, name := range models {
		if name == m.model {
			next = models[(i+1)%len(models)]
			break
		}
	}
	m.model = next
	m.status = "Model: " + m.model
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" || m.busy {
		return m, nil
	}
	m.input.Reset()
	if isExit(q) {
		return m, tea.Quit
	}
	m.history = append(m.history, domain.ConversationTurn{Role: domain.RoleUser, Content: q})
	if !m.gate.IsClean(q) {
		m.history = append(m.history, domain.ConversationTurn{Role: domain.RoleAssistant, Content: moderation.BlockedMessage})
		m.refresh()
		return m, nil
	}
	m.busy = true
	m.status = "Caut..."
	m.refresh()
	return m, tea.Batch(m.ask(q), m.spinner.Tick)
}

func (m Model) ask(q string) tea.Cmd {
	ctx, librarian, model := m.ctx, m.librarian, m.model
	return func() tea.Msg {
		res, err := librarian.Ask(ctx, q, model)
		return turnMsg{query: q, result: res, err: err}
	}
}

func (m Model) illustrate() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if m.illustrator == nil {
		m.status = "Generarea de imagini nu este configurata."
		return m, nil
	}
	if m.lastReply == "" {
		m.status = "Nu exista inca o recomandare de ilustrat."
		return m, nil
	}
	m.busy = true
	m.status = "Generez ilustratia..."
	ctx, il, reply := m.ctx, m.illustrator, m.lastReply
	return m, tea.Batch(func() tea.Msg {
		path, err := il.FromReply(ctx, reply)
		return imageMsg{path: path, err: err}
	}, m.spinner.Tick)
}

func driftVerb(op watch.Operation) string {
	switch op {
	case watch.Created:
		return "creat"
	case watch.Removed:
		return "sters"
	default:
		return "modificat"
	}
}

func isExit(q string) bool {
	switch strings.ToLower(q) {
	case "exit", "quit":
		return true
	}
	return false
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Smart Librarian") + "  " + mutedStyle.Render(m.model)
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return mutedStyle.Render("Bine ai venit! Descrie ce fel de carte ti-ar placea.")
	}
	var b strings.Builder
	for i, turn := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch turn.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("Tu: "))
			b.WriteString(turn.Content)
		default:
			b.WriteString(assistantStyle.Render("Librarian: "))
			b.WriteString(m.renderReply(turn.Content, i == len(m.history)-1))
		}
	}
	return b.String()
}

// renderReply highlights the summary sentence closest to the last query.
func (m Model) renderReply(reply string, latest bool) string {
	head, body, ok := strings.Cut(reply, "\n\n")
	if !ok || !strings.HasPrefix(head, service.ReplyPrefix) {
		return reply
	}
	title := titleStyle.Render(strings.TrimPrefix(head, service.ReplyPrefix))
	if latest {
		body = highlightBestSentence(body, m.lastQuery, highlightStyle)
	}
	return service.ReplyPrefix + title + "\n\n" + body
}

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
