package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/gatewaychat/internal/models"
	"github.com/diogo/gatewaychat/internal/shell"
)

const helpText = `Commands:
  /new              start a new conversation
  /history          browse recent conversations
  /load N           open conversation N from /history
  /delete N         delete conversation N from /history
  /model ID         use model ID
  /models [query]   pick a model
  /temp X           set the temperature (0-2)
  /system [TEXT]    set or clear the system prompt
  /preset ID|none   apply or clear a preset
  /presets          pick a preset
  /s N              send suggestion N
  /exit             quit`

// parseCommand splits "/name args" into its parts
func parseCommand(input string) (name, args string) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "/")
	name, args, _ = strings.Cut(input, " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}

// runCommand executes a slash command typed in the input box
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	name, args := parseCommand(input)

	switch name {
	case "exit", "quit", "q":
		return m, tea.Quit

	case "help", "?":
		m.info = helpText

	case "new":
		m.newChat()

	case "history", "h":
		m.openHistory()

	case "load", "open":
		if conv, ok := m.recentAt(args); ok {
			m.loadConversation(conv)
		}

	case "delete", "rm":
		if conv, ok := m.recentAt(args); ok {
			m.deleteConversation(conv)
		}

	case "model":
		if args == "" {
			m.picker = modelPicker(m.shell.Selection().Model, "")
			m.overlay = overlayModels
			break
		}
		if err := m.shell.SelectModel(args); err != nil {
			m.info = err.Error()
			break
		}
		if _, ok := models.ModelByID(args); ok {
			m.info = "Model set to " + models.DisplayName(args) + "."
		} else {
			m.info = fmt.Sprintf("Model set to %s (not in the catalog).", args)
		}

	case "models":
		m.picker = modelPicker(m.shell.Selection().Model, args)
		m.overlay = overlayModels

	case "temp", "temperature":
		t, err := strconv.ParseFloat(args, 64)
		if err != nil {
			m.info = "Usage: /temp X (0-2)"
			break
		}
		if err := m.shell.SetTemperature(t); err != nil {
			m.info = err.Error()
			break
		}
		m.info = fmt.Sprintf("Temperature set to %.1f.", t)

	case "system":
		m.shell.SetSystemPrompt(args)
		if args == "" {
			m.info = "System prompt cleared."
		} else {
			m.info = "System prompt set."
		}

	case "preset":
		id := args
		if strings.EqualFold(id, "none") {
			id = ""
		}
		if args == "" {
			m.picker = presetPicker(m.shell.Selection().PresetID, m.shell.Presets())
			m.overlay = overlayPresets
			break
		}
		if err := m.shell.SelectPreset(id); err != nil {
			m.info = err.Error()
			break
		}
		if id == "" {
			m.info = "Preset cleared."
		} else {
			m.info = "Preset " + id + " applied."
		}

	case "presets":
		m.picker = presetPicker(m.shell.Selection().PresetID, m.shell.Presets())
		m.overlay = overlayPresets

	case "s", "suggest":
		n, err := strconv.Atoi(args)
		if err != nil {
			m.info = "Usage: /s N"
			break
		}
		if m.sending {
			break
		}
		return m.suggest(n)

	default:
		m.info = fmt.Sprintf("Unknown command /%s. Type /help for the list.", name)
	}

	m.refresh()
	return m, nil
}

// recentAt resolves a 1-based index into the recent conversation list
func (m *Model) recentAt(arg string) (string, bool) {
	recent := m.shell.Recent(shell.RecentLimit)
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(recent) {
		if len(recent) == 0 {
			m.info = "No saved conversations."
		} else {
			m.info = fmt.Sprintf("Pick a conversation between 1 and %d (see /history).", len(recent))
		}
		return "", false
	}
	return recent[n-1].ID, true
}
