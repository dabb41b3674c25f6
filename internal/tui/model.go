package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gatewaychat/internal/chat"
	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
	"github.com/diogo/gatewaychat/internal/render"
	"github.com/diogo/gatewaychat/internal/shell"
)

// Animation tick message
type animationTickMsg time.Time

// sendDoneMsg is returned when a send of generation gen returns
type sendDoneMsg struct {
	gen    uint64
	result chat.Result
	err    error
}

// overlay is the panel drawn instead of the conversation
type overlay int

const (
	overlayNone overlay = iota
	overlayHistory
	overlayModels
	overlayPresets
)

// Model represents the TUI state
type Model struct {
	ctx    context.Context
	shell  *shell.Shell
	events *Events
	mdOpts render.Options

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Send state
	sending   bool
	gen       uint64
	pending   string // user text shown until the session records it
	baseCount int    // messages in the session when the send started
	streaming string

	// Feedback
	notice *chat.Notification
	info   string

	// Overlays
	overlay overlay
	history historySelector
	picker  picker

	ready          bool
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model over sh. events must be the bridge
// whose ChatOptions were given to the shell.
func NewChatModel(ctx context.Context, sh *shell.Shell, events *Events, mdOpts render.Options) Model {
	// Create textarea for input
	ta := textarea.New()
	ta.Placeholder = "Type your message here... (/help for commands)"
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:      ctx,
		shell:    sh,
		events:   events,
		mdOpts:   mdOpts,
		textarea: ta,
		spinner:  s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.events.wait(),
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.shell.Stop()
			return m, tea.Quit
		}
		if m.overlay != overlayNone {
			return m.updateOverlay(msg)
		}

		switch msg.String() {
		case "esc":
			switch {
			case m.sending:
				m.shell.Stop()
				return m, nil
			case m.notice != nil || m.info != "":
				m.notice = nil
				m.info = ""
				return m, nil
			default:
				return m, tea.Quit
			}

		case "ctrl+n":
			m.newChat()
			return m, nil

		case "ctrl+o":
			m.openHistory()
			return m, nil

		case "enter":
			if m.sending {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.submit(input)
		}

	case streamUpdateMsg:
		if m.sending && msg.gen == m.gen {
			m.streaming = msg.content
			m.refresh()
			m.viewport.GotoBottom()
		}
		return m, m.events.wait()

	case notifyMsg:
		n := msg.n
		m.notice = &n
		return m, m.events.wait()

	case sendDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.finishSend(msg)
		return m, nil

	case spinner.TickMsg:
		if m.sending {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.sending {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// only keys reach the textarea so escape sequences do not leak in
	if !m.sending {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 4 // header panel with border
	inputHeight := 6  // input panel with border
	statusHeight := 1
	padding := 2

	vpHeight := height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.refresh()
}

// submit routes a line of input to a command or a send
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	switch input {
	case "exit", "quit":
		return m, tea.Quit
	}
	if strings.HasPrefix(input, "/") {
		return m.runCommand(input)
	}

	// a bare suggestion number on the welcome screen picks that suggestion
	if m.shell.Session().IsEmpty() {
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(shell.Suggestions()) {
			return m.suggest(n)
		}
	}

	return m.startSend(input, func(ctx context.Context) (chat.Result, error) {
		return m.shell.Send(ctx, input)
	})
}

func (m Model) suggest(n int) (tea.Model, tea.Cmd) {
	suggestions := shell.Suggestions()
	if n < 1 || n > len(suggestions) {
		m.info = fmt.Sprintf("Pick a suggestion between 1 and %d.", len(suggestions))
		return m, nil
	}
	return m.startSend(suggestions[n-1].Prompt, func(ctx context.Context) (chat.Result, error) {
		return m.shell.SuggestionClick(ctx, n-1)
	})
}

// startSend shows text as the pending user turn and runs send off the loop
func (m Model) startSend(text string, send func(ctx context.Context) (chat.Result, error)) (tea.Model, tea.Cmd) {
	m.gen = m.events.begin()
	m.sending = true
	m.pending = text
	m.baseCount = len(m.shell.Session().Messages())
	m.streaming = ""
	m.notice = nil
	m.info = ""
	m.animationFrame = 0
	m.refresh()
	m.viewport.GotoBottom()

	gen := m.gen
	ctx := m.events.track(m.ctx, gen)
	return m, tea.Batch(
		func() tea.Msg {
			res, err := send(ctx)
			return sendDoneMsg{gen: gen, result: res, err: err}
		},
		m.spinner.Tick,
		animationTick(),
	)
}

func (m *Model) finishSend(msg sendDoneMsg) {
	m.sending = false
	m.pending = ""
	m.streaming = ""

	switch {
	case msg.err != nil:
		m.info = msg.err.Error()
	case msg.result.State == chat.Aborted:
		m.info = "Stopped."
	case msg.result.State == chat.Failed && m.notice == nil:
		title, desc := apierrors.UserMessage(msg.result.Err)
		m.notice = &chat.Notification{Title: title, Description: desc, Err: msg.result.Err}
	}

	m.refresh()
	m.viewport.GotoBottom()
}

// resetSend forgets the current send after the conversation was replaced
func (m *Model) resetSend() {
	m.gen = m.events.begin()
	m.sending = false
	m.pending = ""
	m.streaming = ""
}

func (m *Model) newChat() {
	m.shell.NewChat()
	m.resetSend()
	m.notice = nil
	m.info = "Started a new conversation."
	m.refresh()
}

func (m *Model) loadConversation(id string) {
	conv, err := m.shell.LoadConversation(id)
	if err != nil {
		m.info = err.Error()
		return
	}
	m.resetSend()
	m.notice = nil
	m.info = fmt.Sprintf("Opened %q.", conv.Title)
	m.refresh()
	m.viewport.GotoBottom()
}

func (m *Model) deleteConversation(id string) {
	open := m.shell.Session().ID() == id
	m.shell.DeleteConversation(id)
	if open {
		m.resetSend()
	}
	m.info = "Conversation deleted."
	m.refresh()
}

func (m *Model) openHistory() {
	m.history = newHistorySelector(m.shell.Recent(shell.RecentLimit), m.shell.Session().ID())
	m.overlay = overlayHistory
}

func (m Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayHistory:
		var action historyAction
		m.history, action = m.history.update(msg)
		switch action {
		case historyClose:
			m.overlay = overlayNone
		case historyNew:
			m.overlay = overlayNone
			m.newChat()
		case historyLoad:
			m.overlay = overlayNone
			if conv, ok := m.history.selected(); ok {
				m.loadConversation(conv.ID)
			}
		case historyDelete:
			if conv, ok := m.history.selected(); ok {
				m.deleteConversation(conv.ID)
				m.history = m.history.remove(conv.ID)
			}
		}

	case overlayModels, overlayPresets:
		next, chosen, closed := m.picker.update(msg)
		m.picker = next
		if closed {
			kind := m.overlay
			m.overlay = overlayNone
			if chosen != nil {
				m.applyPick(kind, *chosen)
			}
		}
	}
	return m, nil
}

func (m *Model) applyPick(kind overlay, it pickerItem) {
	var err error
	switch kind {
	case overlayModels:
		if err = m.shell.SelectModel(it.ID); err == nil {
			m.info = "Model set to " + it.Name + "."
		}
	case overlayPresets:
		if err = m.shell.SelectPreset(it.ID); err == nil {
			if it.ID == "" {
				m.info = "Preset cleared."
			} else {
				m.info = "Preset " + it.Name + " applied."
			}
		}
	}
	if err != nil {
		m.info = err.Error()
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	switch m.overlay {
	case overlayHistory:
		return m.history.view(m.width-8, m.height)
	case overlayModels, overlayPresets:
		return m.picker.view(m.width - 8)
	}

	var sections []string
	contentWidth := m.width - 4

	// HEADER
	header := headerStyle.Width(contentWidth).Render(m.renderHeader())
	sections = append(sections, header)

	// MESSAGES
	var messagesContent string
	if m.shell.Session().IsEmpty() && !m.sending {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	// INPUT
	var inputContent string
	if m.sending {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	// STATUS BAR
	sections = append(sections, m.renderStatusBar(contentWidth))

	// FEEDBACK
	if m.info != "" {
		sections = append(sections, infoStyle.Width(contentWidth-2).Render(m.info))
	}
	if m.notice != nil {
		sections = append(sections, m.renderNotice(contentWidth))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	sel := m.shell.Selection()
	sep := hintStyle.Render("  •  ")

	parts := []string{
		titleStyle.Render("✦ Gateway Chat"),
		sep,
		subtitleStyle.Render(models.DisplayName(sel.Model)),
		sep,
		subtitleStyle.Render(fmt.Sprintf("temp %.1f", sel.Temperature)),
	}
	if sel.PresetID != "" {
		name := sel.PresetID
		if p, ok := models.PresetByID(m.shell.Presets(), sel.PresetID); ok {
			name = p.Name
		}
		parts = append(parts, sep, subtitleStyle.Render("preset "+name))
	}
	if sel.SystemPrompt != "" {
		parts = append(parts, sep, hintStyle.Render("system prompt set"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// renderWelcome renders the welcome screen with numbered suggestions
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	lines := []string{
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("What can I help you with?"),
		"",
	}
	for i, s := range shell.Suggestions() {
		line := suggestionNumber.Render(fmt.Sprintf("%d ", i+1)) + suggestionStyle.Render(s.Text)
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
	}
	lines = append(lines, "", hintStyle.Width(width).Align(lipgloss.Center).Render("Type a number to use a suggestion"))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	label := " thinking "
	if m.streaming != "" {
		label = " writing "
	}
	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + models.DisplayName(m.shell.Selection().Model) + label)
	hint := hintStyle.Render("(Esc to stop)")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, hint)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	keys := [][2]string{
		{"Enter", "Send"},
		{"Esc", "Stop/Quit"},
		{"^N", "New"},
		{"^O", "History"},
		{"↑↓", "Scroll"},
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(shortcutBar(keys))
}

func (m Model) renderNotice(width int) string {
	body := errorStyle.Render("✗ "+m.notice.Title) + "\n" + subtitleStyle.Render(m.notice.Description)
	if m.notice.Err != nil {
		body = FormatError(m.notice.Err)
	}
	return toastStyle.Width(width - 2).Render(body)
}

// refresh rebuilds the viewport from the session plus the in-flight send
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	msgs := m.shell.Session().Messages()
	if m.sending && m.pending != "" && len(msgs) == m.baseCount {
		msgs = append(msgs, history.Message{Role: models.RoleUser, Content: m.pending})
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	mdOpts := m.mdOpts.WithWidth(bubbleWidth - 4)

	for i, msg := range msgs {
		if i > 0 {
			content.WriteString("\n")
		}
		if msg.Role == models.RoleUser {
			content.WriteString(m.renderUser(msg.Content, bubbleWidth))
		} else {
			label := msg.Model
			if label == "" {
				label = models.DisplayName(m.shell.Selection().Model)
			}
			content.WriteString(m.renderAssistant(label, render.Answer(msg.Content, mdOpts), bubbleWidth))
		}
		content.WriteString("\n")
	}

	if m.sending && m.streaming != "" {
		content.WriteString("\n")
		rendered := render.StreamingMarkdown(m.streaming, mdOpts)
		content.WriteString(m.renderAssistant(models.DisplayName(m.shell.Selection().Model), rendered+"▌", bubbleWidth))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m Model) renderUser(text string, width int) string {
	label := userLabelStyle.Render("⬤ You")
	return label + "\n" + userBubbleStyle.Width(width).Render(text)
}

func (m Model) renderAssistant(label, rendered string, width int) string {
	rendered = strings.TrimRight(rendered, "\n")
	return assistantLabelStyle.Render("✦ "+label) + "\n" + assistantBubbleStyle.Width(width).Render(rendered)
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(ctx context.Context, sh *shell.Shell, events *Events, mdOpts render.Options) error {
	m := NewChatModel(ctx, sh, events, mdOpts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	sh.Stop()
	return err
}
