package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/diogo/gatewaychat/internal/chat"
	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/models"
	"github.com/diogo/gatewaychat/internal/render"
	"github.com/diogo/gatewaychat/internal/shell"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorWarning  = lipgloss.Color("#e0af68")
	colorError    = lipgloss.Color("#f7768e")
	colorPrimary  = lipgloss.Color("#7aa2f7")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	dimStyle     = lipgloss.NewStyle().Foreground(colorTextDim)
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner drawing on out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// setMessage replaces the text shown next to the animation
func (s *spinner) setMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	fmt.Fprintf(s.out, "%s %s\n", checkmark, successStyle.Render(message))
}

// stopWithError stops the spinner and leaves the line clear for an error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// deltaWriter prints the part of each cumulative update not yet written
type deltaWriter struct {
	mu      sync.Mutex
	w       io.Writer
	written int
}

func (d *deltaWriter) update(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(content) <= d.written {
		return
	}
	_, _ = io.WriteString(d.w, content[d.written:])
	d.written = len(content)
}

// queryOptions are the one-shot flags after parsing
type queryOptions struct {
	Model       string
	Temperature *float64
	System      *string
	Preset      string
	Continue    string
	Output      string
	Raw         bool
}

// queryOptionsFromFlags collects the root flags that shape a one-shot send
func queryOptionsFromFlags(changed func(string) bool) queryOptions {
	opts := queryOptions{
		Model:    modelFlag,
		Preset:   presetFlag,
		Continue: continueFlag,
		Output:   outputFlag,
		Raw:      rawFlag || !isStdoutTTY(),
	}
	if changed("temperature") {
		t := temperatureFlag
		opts.Temperature = &t
	}
	if changed("system") {
		s := systemFlag
		opts.System = &s
	}
	return opts
}

// applySelection layers the flags over the stored selection.
// A preset goes first so explicit flags win over it.
func applySelection(sh *shell.Shell, app *App, opts queryOptions) error {
	if opts.Continue != "" {
		if err := resumeConversation(app.Store, sh, opts.Continue); err != nil {
			return err
		}
	}
	if opts.Preset != "" {
		if err := sh.SelectPreset(opts.Preset); err != nil {
			return err
		}
	}
	if opts.Model != "" {
		if err := sh.SelectModel(opts.Model); err != nil {
			return err
		}
	}
	if opts.Temperature != nil {
		if err := sh.SetTemperature(*opts.Temperature); err != nil {
			return err
		}
	}
	if opts.System != nil {
		sh.SetSystemPrompt(*opts.System)
	}
	return nil
}

// runQuery sends a single prompt and prints the answer. Raw output streams
// the text to stdout as it arrives; decorated output renders it in a bubble.
func runQuery(ctx context.Context, stdout, stderr io.Writer, prompt string, opts queryOptions) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()
	cfg := app.Config

	stream := opts.Raw && opts.Output == ""
	delta := &deltaWriter{w: stdout}

	var chatOpts []chat.Option
	if stream {
		chatOpts = append(chatOpts, chat.WithUpdateHandler(delta.update))
	}
	sh, err := app.NewShell([]shell.Option{shell.WithEphemeralSelection()}, chatOpts...)
	if err != nil {
		if !opts.Raw {
			fmt.Fprintln(stderr, formatErrorMessage(err, "Failed to connect"))
		}
		return err
	}
	if err := applySelection(sh, app, opts); err != nil {
		return err
	}
	sel := sh.Selection()

	if cfg.Verbose && !opts.Raw {
		fmt.Fprintf(stderr, "[verbose] Model: %s, temperature %.1f\n", sel.Model, sel.Temperature)
		if sel.PresetID != "" {
			fmt.Fprintf(stderr, "[verbose] Preset: %s\n", sel.PresetID)
		}
	}

	var spin *spinner
	if !opts.Raw {
		spin = newSpinner(stderr, fmt.Sprintf("Asking %s", models.DisplayName(sel.Model)))
		spin.start()
		sh.Orchestrator().OnUpdate(func(content string) {
			spin.setMessage(fmt.Sprintf("Receiving %s (%d chars)", models.DisplayName(sel.Model), len(content)))
		})
	}

	startTime := time.Now()
	res, err := sh.Send(ctx, prompt)
	requestDuration := time.Since(startTime)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}

	switch res.State {
	case chat.Aborted:
		if spin != nil {
			spin.stopWithError()
		}
		if stream && delta.written > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintln(stderr, warnStyle.Render("Generation stopped."))
		return nil
	case chat.Failed:
		if spin != nil {
			spin.stopWithError()
		}
		fmt.Fprintln(stderr, formatErrorMessage(res.Err, "Generation failed"))
		return fmt.Errorf("generation failed: %w", res.Err)
	}

	if spin != nil {
		spin.stopWithSuccess("Done")
	}
	app.Log.Debug("one-shot completed",
		zap.String("conversation", sh.Session().ID()),
		zap.Duration("took", requestDuration))

	if cfg.Verbose && !opts.Raw {
		fmt.Fprintf(stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
		if res.Retried {
			fmt.Fprintln(stderr, "[verbose] Retried without temperature")
		}
		fmt.Fprintf(stderr, "[verbose] Conversation: %s\n", sh.Session().ID())
	}

	text := res.Content

	if stream {
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(stdout)
		}
		return nil
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !opts.Raw {
			fmt.Fprintln(stderr, successStyle.Render(fmt.Sprintf("✓ Response saved to %s", opts.Output)))
		}
		return nil
	}

	if cfg.CopyToClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	printBubble(stdout, models.DisplayName(sel.Model), text, render.OptionsFromMarkdownConfig(cfg.Markdown))
	return nil
}

// printBubble renders markdown inside the assistant bubble used by the TUI
func printBubble(w io.Writer, label, text string, opts render.Options) {
	termWidth := getTerminalWidth()
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	rendered := strings.TrimRight(render.Answer(text, opts.WithWidth(bubbleWidth-4)), "\n")

	fmt.Fprintln(w, assistantLabelStyle.Render("✦ "+label))
	fmt.Fprintln(w, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with the user-facing summary and
// whatever the provider reported.
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	title, desc := apierrors.UserMessage(err)
	if desc != "" && desc != err.Error() {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  %s: %s", title, desc)))
	}

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'gatewaychat login' to store a fresh token"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your internet connection and the gateway base_url"))
	case apierrors.IsProviderError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Try another model with -m, or lower the temperature with -t"))
	}

	return sb.String()
}
