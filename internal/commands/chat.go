package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/metrics"
	"github.com/diogo/gatewaychat/internal/render"
	"github.com/diogo/gatewaychat/internal/shell"
	"github.com/diogo/gatewaychat/internal/tui"
)

var (
	chatResumeFlag  string
	chatMetricsAddr string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session.

Answers stream in as they arrive. Press Esc to stop a generation, Ctrl+O to
browse past conversations and type /help for the slash commands.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
	Example: `  gatewaychat chat
  gatewaychat chat --resume @last
  gatewaychat chat --metrics-addr 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(commandContext(cmd))
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatResumeFlag, "resume", "r", "", "Open a stored conversation (@last, index, id or title)")
	chatCmd.Flags().StringVar(&chatMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while chatting")
}

func runChat(ctx context.Context) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	events := tui.NewEvents()
	sh, err := app.NewShell(nil, events.ChatOptions()...)
	if err != nil {
		fmt.Println(formatErrorMessage(err, "Failed to connect"))
		return err
	}

	if chatResumeFlag != "" {
		if err := resumeConversation(app.Store, sh, chatResumeFlag); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if chatMetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, chatMetricsAddr); err != nil {
				app.Log.Error("metrics server stopped", zap.String("addr", chatMetricsAddr), zap.Error(err))
			}
		}()
		app.Log.Info("serving metrics", zap.String("addr", chatMetricsAddr))
	}

	return tui.RunChat(ctx, sh, events, render.OptionsFromMarkdownConfig(app.Config.Markdown))
}

func resumeConversation(store *history.Store, sh *shell.Shell, ref string) error {
	id, err := history.NewResolver(store).Resolve(ref)
	if err != nil {
		return fmt.Errorf("cannot resume: %w", err)
	}
	_, err = sh.LoadConversation(id)
	return err
}
