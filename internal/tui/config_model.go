package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gatewaychat/internal/config"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
	"github.com/diogo/gatewaychat/internal/render"
)

// feedbackClearMsg is sent to clear feedback messages
type feedbackClearMsg struct{}

// configEntry is one editable line of the config menu. Entries with
// choices open a sub-list; entries without toggle a boolean.
type configEntry struct {
	label   string
	value   func(c config.Config) string
	choices func() []string
	set     func(c *config.Config, v string)
	toggle  func(c *config.Config) bool
}

func configEntries() []configEntry {
	return []configEntry{
		{
			label:   "Default Model",
			value:   func(c config.Config) string { return c.DefaultModel },
			choices: modelIDs,
			set:     func(c *config.Config, v string) { c.DefaultModel = v },
		},
		{
			label:   "Provider",
			value:   func(c config.Config) string { return c.Gateway.Provider },
			choices: config.Providers,
			set:     func(c *config.Config, v string) { c.Gateway.Provider = v },
		},
		{
			label:   "Storage Backend",
			value:   func(c config.Config) string { return c.Storage.Backend },
			choices: func() []string { return []string{history.BackendFile, history.BackendSQLite, history.BackendMemory} },
			set:     func(c *config.Config, v string) { c.Storage.Backend = v },
		},
		{
			label:   "Log Level",
			value:   func(c config.Config) string { return c.LogLevel },
			choices: func() []string { return []string{"debug", "info", "warn", "error"} },
			set:     func(c *config.Config, v string) { c.LogLevel = v },
		},
		{
			label: "Copy to Clipboard",
			value: func(c config.Config) string { return boolLabel(c.CopyToClipboard) },
			toggle: func(c *config.Config) bool {
				c.CopyToClipboard = !c.CopyToClipboard
				return c.CopyToClipboard
			},
		},
		{
			label:   "Markdown Theme",
			value:   func(c config.Config) string { return c.Markdown.Style },
			choices: render.ThemeNames,
			set:     func(c *config.Config, v string) { c.Markdown.Style = v },
		},
		{
			label:   "TUI Theme",
			value:   func(c config.Config) string { return c.TUITheme },
			choices: render.TUIThemeNames,
			set: func(c *config.Config, v string) {
				c.TUITheme = v
				// apply immediately so the menu repaints in the new colors
				render.SetTUITheme(v)
				UpdateTheme()
			},
		},
	}
}

func modelIDs() []string {
	all := models.AllModels()
	ids := make([]string, len(all))
	for i, m := range all {
		ids[i] = m.ID
	}
	return ids
}

func boolLabel(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

// ConfigModel represents the config TUI state
type ConfigModel struct {
	config    config.Config
	save      func(config.Config) error
	entries   []configEntry
	configDir string
	tokenPath string
	hasToken  bool

	// Navigation
	cursor      int // main menu; len(entries) is Exit
	choosing    bool
	choiceIndex int

	// Feedback
	feedback        string
	feedbackTimeout time.Duration

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewConfigModel creates a config editor over cfg; every change is written
// through save.
func NewConfigModel(cfg config.Config, save func(config.Config) error) ConfigModel {
	configDir, _ := config.GetConfigDir()
	tokenPath, _ := config.GetTokenPath()
	_, tokenErr := config.LoadToken()

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		UpdateTheme()
	}

	return ConfigModel{
		config:          cfg,
		save:            save,
		entries:         configEntries(),
		configDir:       configDir,
		tokenPath:       tokenPath,
		hasToken:        tokenErr == nil,
		feedbackTimeout: 2 * time.Second,
	}
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

// Config returns the edited configuration
func (m ConfigModel) Config() config.Config {
	return m.config
}

// clearFeedback returns a command that clears the feedback message after a delay
func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.choosing {
				m.choosing = false
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			if m.choosing {
				m.choiceIndex = wrap(m.choiceIndex-1, len(m.entries[m.cursor].choices()))
			} else {
				m.cursor = wrap(m.cursor-1, len(m.entries)+1)
			}

		case "down", "j":
			if m.choosing {
				m.choiceIndex = wrap(m.choiceIndex+1, len(m.entries[m.cursor].choices()))
			} else {
				m.cursor = wrap(m.cursor+1, len(m.entries)+1)
			}

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i%n + n) % n
}

// handleSelect handles menu item selection
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	if m.cursor == len(m.entries) {
		return m, tea.Quit
	}
	e := m.entries[m.cursor]

	if m.choosing {
		v := e.choices()[m.choiceIndex]
		e.set(&m.config, v)
		m.choosing = false
		return m.persist(fmt.Sprintf("%s set to %s", e.label, v))
	}

	if e.toggle != nil {
		on := e.toggle(&m.config)
		return m.persist(fmt.Sprintf("%s %s", e.label, boolLabel(on)))
	}

	// open the choice list on the current value
	m.choosing = true
	m.choiceIndex = 0
	current := e.value(m.config)
	for i, c := range e.choices() {
		if c == current {
			m.choiceIndex = i
			break
		}
	}
	return m, nil
}

func (m ConfigModel) persist(feedback string) (tea.Model, tea.Cmd) {
	if err := m.save(m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
	} else {
		m.feedback = feedback
	}
	return m, clearFeedback(m.feedbackTimeout)
}

// View renders the TUI
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, headerStyle.Width(contentWidth).Render(titleStyle.Render("✦ Configuration")))

	tokenStatus := errorStyle.Render("✗ not found")
	if m.hasToken {
		tokenStatus = pickerSelectedStyle.Render("✓ available")
	}
	paths := lipgloss.JoinVertical(lipgloss.Left,
		pickerTitleStyle.Render("Paths"),
		fmt.Sprintf("   Config: %s", pickerMetaStyle.Render(m.configDir+"/config.json")),
		fmt.Sprintf("   Token:  %s  %s", pickerMetaStyle.Render(m.tokenPath), tokenStatus),
	)
	sections = append(sections, messagesAreaStyle.Width(contentWidth).Render(paths))

	var body string
	if m.choosing {
		body = m.renderChoices()
	} else {
		body = m.renderMainMenu()
	}
	sections = append(sections, messagesAreaStyle.Width(contentWidth).Render(body))

	if m.feedback != "" {
		sections = append(sections, noticeStyle.Render("✓ "+m.feedback))
	}

	back := "Exit"
	if m.choosing {
		back = "Back"
	}
	bar := shortcutBar([][2]string{{"↑↓", "Navigate"}, {"Enter", "Select"}, {"Esc", back}})
	sections = append(sections, statusBarStyle.Width(contentWidth).Align(lipgloss.Center).Render(bar))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ConfigModel) renderMainMenu() string {
	labelWidth := 0
	for _, e := range m.entries {
		labelWidth = max(labelWidth, len(e.label))
	}

	items := []string{pickerTitleStyle.Render("Settings"), ""}
	for i, e := range m.entries {
		value := e.value(m.config)
		if value == "" {
			value = "-"
		}
		label := e.label + strings.Repeat(" ", labelWidth-len(e.label)+3)
		items = append(items, menuLine(i == m.cursor, label)+pickerMetaStyle.Render(value))
	}
	items = append(items, "", menuLine(m.cursor == len(m.entries), "Exit"))

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m ConfigModel) renderChoices() string {
	e := m.entries[m.cursor]
	current := e.value(m.config)

	items := []string{pickerTitleStyle.Render("Select " + e.label), ""}
	for i, c := range e.choices() {
		line := menuLine(i == m.choiceIndex, c)
		if c == current {
			line += pickerSelectedStyle.Render(" (current)")
		}
		items = append(items, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func menuLine(selected bool, text string) string {
	if selected {
		return pickerCursorStyle.Render("▸ ") + pickerSelectedStyle.Render(text)
	}
	return "  " + pickerItemStyle.Render(text)
}

// RunConfig starts the config TUI over the stored configuration
func RunConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	m := NewConfigModel(cfg, config.SaveConfig)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
