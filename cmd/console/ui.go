package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

const (
	AgentName       = "DM"
	PlaceHolderText = "Describe your action, or report a roll (e.g. \"I rolled 14\")..."

	// sentHistory is how many recent turns ride along with each request.
	sentHistory = 20
)

type entryKind int

const (
	entryUser entryKind = iota
	entryDM
	entryInfo
	entryError
)

type transcriptEntry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *apiClient
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	transcript   []transcriptEntry
	history      []chat.ChatMessage
	lastPlayer   string
	lastDMText   string
	rollRequests []chat.RollRequest
	lastRoll     *chat.LastRoll

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type respondMsg struct {
	response *chat.DMResponse
	err      error
}

type optionsMsg struct {
	response *chat.OptionsResponse
	err      error
}

type sessionResetMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	rollStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = chat.MaxMessageLength
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		api:          api,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
}

func writeHeader(chatWidth int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("DUNGEON MASTER") + "\n\n")
	content.WriteString("Describe what your character does. When the DM asks for a roll,\n")
	content.WriteString("roll it yourself and type the total.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")
	return content.String()
}

func writeMetadata(sessionID string, turns int, requests []chat.RollRequest, last *chat.LastRoll) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	if len(sessionID) > 8 {
		content.WriteString(sessionID[:8] + "...\n\n")
	} else {
		content.WriteString(sessionID + "\n\n")
	}

	content.WriteString("Turns:\n")
	content.WriteString(fmt.Sprintf("%d total\n\n", turns))

	content.WriteString("Roll requested:\n")
	if len(requests) == 0 {
		content.WriteString("None\n\n")
	} else {
		for _, r := range requests {
			content.WriteString("• " + describeRequest(r) + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString("Last roll:\n")
	if last == nil {
		content.WriteString("None\n\n")
	} else {
		content.WriteString(describeLastRoll(last) + "\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /options: Suggest\n")
	content.WriteString("• /copy: Copy reply\n")
	content.WriteString("• /reset: New session\n")

	return content.String()
}

func describeRequest(r chat.RollRequest) string {
	label := r.Purpose
	if label == "" {
		label = r.Type
	}
	if r.DC != nil {
		label += fmt.Sprintf(" (DC %d)", *r.DC)
	}
	if r.AC != nil {
		label += fmt.Sprintf(" (AC %d)", *r.AC)
	}
	return label
}

func describeLastRoll(last *chat.LastRoll) string {
	name := strings.TrimSpace(last.Skill + " " + last.Kind)
	if name == "" {
		name = "roll"
	}
	line := fmt.Sprintf("%s: %d", name, last.Result)
	if last.DC != nil {
		line += fmt.Sprintf(" vs DC %d", *last.DC)
	}
	if last.AC != nil {
		line += fmt.Sprintf(" vs AC %d", *last.AC)
	}
	if last.Success != nil {
		if *last.Success {
			line += " ✓"
		} else {
			line += " ✗"
		}
	}
	return line
}

// writeChatContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(writeHeader(chatWidth))

	for _, e := range m.transcript {
		switch e.kind {
		case entryDM:
			content.WriteString(formatNarratorResponse(e.text, chatWidth) + "\n\n")
		case entryUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, max(chatWidth-6, 1)) + "\n\n")
		case entryInfo:
			content.WriteString(wordwrap.String(e.text, max(chatWidth, 1)) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render("Error: "+e.text) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) refreshMeta() {
	m.metaViewport.SetContent(writeMetadata(m.config.SessionID, len(m.history), m.rollRequests, m.lastRoll))
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.refreshMeta()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.lastPlayer = input
			m.transcript = append(m.transcript, transcriptEntry{kind: entryUser, text: input})
			m.writeChatContent()

			req := chat.DMRequest{
				SessionID: m.config.SessionID,
				Message:   input,
				History:   recentHistory(m.history, sentHistory),
			}
			m.history = append(m.history, chat.ChatMessage{Role: chat.ChatRoleUser, Content: input})

			return m, tea.Batch(m.sendRespond(req), progressTick())
		}

	case respondMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: msg.err.Error()})
		} else {
			m.lastDMText = msg.response.Text
			m.rollRequests = msg.response.RollRequests
			if msg.response.LastRoll != nil {
				m.lastRoll = msg.response.LastRoll
			}
			m.history = append(m.history, chat.ChatMessage{Role: chat.ChatRoleAgent, Content: msg.response.Text})
			m.transcript = append(m.transcript, transcriptEntry{kind: entryDM, text: msg.response.Text})
		}
		m.writeChatContent()
		m.refreshMeta()
		return m, nil

	case optionsMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: msg.err.Error()})
		} else {
			m.transcript = append(m.transcript, transcriptEntry{
				kind: entryInfo,
				text: titleStyle.Render("Options:") + "\n" + strings.Join(msg.response.Options, "\n"),
			})
		}
		m.writeChatContent()
		return m, nil

	case sessionResetMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: msg.err.Error()})
		} else {
			m.history = nil
			m.lastDMText = ""
			m.lastPlayer = ""
			m.rollRequests = nil
			m.lastRoll = nil
			m.transcript = []transcriptEntry{{kind: entryInfo, text: promptStyle.Render("Session reset. A new adventure begins.")}}
		}
		m.writeChatContent()
		m.refreshMeta()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func recentHistory(history []chat.ChatMessage, n int) []chat.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func formatNarratorResponse(response string, width int) string {
	prefix := AgentName + ": "
	wrapped := wordwrap.String(response, max(width-len(prefix), 1))

	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isOptionLine(trimmed) {
			lines[i] = rollStyle.Render(trimmed)
		}
	}
	return narratorStyle.Render(prefix) + strings.Join(lines, "\n")
}

func isOptionLine(line string) bool {
	return len(line) > 2 && line[1] == '.' && line[0] >= 'A' && line[0] <= 'C'
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `Commands:
• /help - Show this help
• /options - Suggest three next actions
• /copy - Copy the last DM reply to the clipboard
• /reset - Forget this session and start over
• Ctrl+C - Quit

How to play:
• Describe your action and press Enter
• When asked to roll, type your total (e.g. "I rolled 15")
• The DM resolves the roll and offers what comes next`
		m.transcript = append(m.transcript, transcriptEntry{kind: entryInfo, text: titleStyle.Render("Help:") + "\n" + helpText})

	case "/options":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.sendOptions(chat.OptionsRequest{
			SessionID:     m.config.SessionID,
			LastDMText:    m.lastDMText,
			PlayerMessage: m.lastPlayer,
			History:       recentHistory(m.history, sentHistory),
			LastRoll:      m.lastRoll,
		}), progressTick())

	case "/copy":
		if m.lastDMText == "" {
			m.transcript = append(m.transcript, transcriptEntry{kind: entryInfo, text: promptStyle.Render("Nothing to copy yet.")})
		} else if err := clipboard.WriteAll(m.lastDMText); err != nil {
			m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: "clipboard unavailable: " + err.Error()})
		} else {
			m.transcript = append(m.transcript, transcriptEntry{kind: entryInfo, text: promptStyle.Render("Copied the last reply.")})
		}

	case "/reset":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.resetSession()

	default:
		m.transcript = append(m.transcript, transcriptEntry{kind: entryError, text: fmt.Sprintf("unknown command %q, try /help", cmd)})
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) sendRespond(req chat.DMRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.api.respond(req)
		return respondMsg{resp, err}
	}
}

func (m ConsoleUI) sendOptions(req chat.OptionsRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.api.options(req)
		return optionsMsg{resp, err}
	}
}

func (m ConsoleUI) resetSession() tea.Cmd {
	return func() tea.Msg {
		return sessionResetMsg{m.api.deleteSession(m.config.SessionID)}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the table?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
