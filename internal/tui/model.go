package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"candidate-search/internal/domain"
	"candidate-search/internal/service"
)

// QueryPort is the TUI-facing subset of the query service.
type QueryPort interface {
	ListCandidates(ctx context.Context) (service.Roster, error)
	CandidateSummary(ctx context.Context, candidateID int) <-chan domain.Event
	Ask(ctx context.Context, query string) <-chan domain.Event
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service    QueryPort
	ctx        context.Context
	cancel     context.CancelFunc
	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	current    string
	events     <-chan domain.Event
	streaming  bool
	status     string
	ready      bool
}

type eventMsg struct {
	event domain.Event
	ok    bool
}

type rosterMsg struct {
	roster service.Roster
	err    error
}

// New creates a new TUI model instance.
func New(svc QueryPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about candidates, or /candidates, /candidate <id>"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		service:  svc,
		ctx:      ctx,
		cancel:   cancel,
		input:    ti,
		viewport: vp,
		status:   "Ready. Type a question and press Enter.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and stream events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.cancel()
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.streaming {
			return m.submit()
		}

	case rosterMsg:
		if msg.err != nil {
			m.transcript = append(m.transcript, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.transcript = append(m.transcript, renderRoster(msg.roster))
		}
		m.status = "Ready."
		m.refresh()
		return m, nil

	case eventMsg:
		return m.handleEvent(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.transcript = append(m.transcript, userStyle.Render("You: ")+q)

	switch {
	case q == "/candidates":
		m.status = "Loading candidates..."
		m.refresh()
		return m, m.fetchRoster()
	case strings.HasPrefix(q, "/candidate "):
		id, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(q, "/candidate ")))
		if err != nil {
			m.transcript = append(m.transcript, errorStyle.Render("Usage: /candidate <numeric id>"))
			m.refresh()
			return m, nil
		}
		return m.startStream(m.service.CandidateSummary(m.ctx, id), "Summarizing...")
	default:
		return m.startStream(m.service.Ask(m.ctx, q), "Thinking...")
	}
}

func (m Model) startStream(events <-chan domain.Event, status string) (tea.Model, tea.Cmd) {
	m.events = events
	m.streaming = true
	m.status = status
	m.current = ""
	m.refresh()
	return m, waitForEvent(events)
}

func (m Model) handleEvent(msg eventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		if m.current != "" {
			m.transcript = append(m.transcript, assistantStyle.Render("Assistant: ")+m.current)
			m.current = ""
		}
		m.streaming = false
		m.status = "Ready."
		m.refresh()
		return m, nil
	}

	switch msg.event.Type {
	case domain.EventMetadata:
		m.transcript = append(m.transcript, metaStyle.Render(renderMetadata(msg.event)))
	case domain.EventContent:
		m.current += msg.event.Text()
	case domain.EventError:
		m.transcript = append(m.transcript, errorStyle.Render("Error: "+msg.event.Text()))
	case domain.EventDone:
		// terminal; the channel close follows
	}
	m.refresh()
	return m, waitForEvent(m.events)
}

func (m *Model) refresh() {
	view := strings.Join(m.transcript, "\n\n")
	if m.current != "" {
		if view != "" {
			view += "\n\n"
		}
		view += assistantStyle.Render("Assistant: ") + m.current
	}
	if view == "" {
		view = "No conversation yet."
	}
	m.viewport.SetContent(view)
	m.viewport.GotoBottom()
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Candidate Search")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) fetchRoster() tea.Cmd {
	return func() tea.Msg {
		roster, err := m.service.ListCandidates(m.ctx)
		return rosterMsg{roster: roster, err: err}
	}
}

func waitForEvent(events <-chan domain.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{event: ev, ok: ok}
	}
}

func renderRoster(roster service.Roster) string {
	if roster.Total == 0 {
		return "No candidates ingested yet."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d candidates:", roster.Total)
	for _, c := range roster.Candidates {
		fmt.Fprintf(&sb, "\n  %d  %-25s %s", c.ID, c.Name, c.SourceFile)
		if c.Profession != "" && c.Profession != domain.ProfessionUnknown {
			fmt.Fprintf(&sb, "  (%s)", c.Profession)
		}
	}
	return sb.String()
}

func renderMetadata(ev domain.Event) string {
	var payload map[string]any
	if err := json.Unmarshal(ev.Data, &payload); err != nil {
		return "[" + string(ev.Data) + "]"
	}
	if tool, ok := payload["tool"].(string); ok {
		return fmt.Sprintf("[using tool: %s]", tool)
	}
	if name, ok := payload["candidate_name"].(string); ok {
		id := payload["candidate_id"]
		file, _ := payload["file_name"].(string)
		return fmt.Sprintf("[candidate %v: %s (%s)]", id, name, file)
	}
	return "[" + string(ev.Data) + "]"
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	metaStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
