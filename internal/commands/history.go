package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

var (
	historyListLimit    int
	historyExportFormat string
	historyExportOutput string
	historySearchBody   bool
	historyClearForce   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage conversation history",
	Long: `View and manage your local conversation history.

Conversations can be referenced by:
` + history.ListAliases(),
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversations and settings",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <ref>",
	Short: "Export a conversation as Markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search conversation titles (and content with --content)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySearch,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyListLimit, "limit", "n", 0, "Show at most N conversations")
	historyExportCmd.Flags().StringVar(&historyExportFormat, "format", "md", "Export format (md, json)")
	historyExportCmd.Flags().StringVarP(&historyExportOutput, "output", "o", "", "Write to file instead of stdout")
	historySearchCmd.Flags().BoolVar(&historySearchBody, "content", false, "Also search message content")
	historyClearCmd.Flags().BoolVar(&historyClearForce, "force", false, "Do not ask for confirmation")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historySearchCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	conversations := app.Store.Recent(historyListLimit)
	if len(conversations) == 0 {
		fmt.Fprintln(out, "No conversations found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tMODEL\tMESSAGES\tUPDATED")
	_, _ = fmt.Fprintln(w, "-\t--\t-----\t-----\t--------\t-------")

	for i, conv := range conversations {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			i+1, shortID(conv.ID), truncateTitle(conv.Title, 40), models.DisplayName(conv.Model),
			len(conv.Messages), history.FormatRelativeTime(conv.Updated()))
	}

	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	conv, err := history.NewResolver(app.Store).ResolveConversation(args[0])
	if err != nil {
		return err
	}

	printConversation(cmd.OutOrStdout(), conv)
	return nil
}

func printConversation(out io.Writer, conv history.Conversation) {
	fmt.Fprintf(out, "ID: %s\n", conv.ID)
	fmt.Fprintf(out, "Title: %s\n", conv.Title)
	fmt.Fprintf(out, "Model: %s\n", models.DisplayName(conv.Model))
	fmt.Fprintf(out, "Temperature: %.1f\n", conv.Temperature)
	if conv.PresetID != "" {
		fmt.Fprintf(out, "Preset: %s\n", conv.PresetID)
	}
	if conv.SystemPrompt != "" {
		fmt.Fprintf(out, "System prompt: %s\n", conv.SystemPrompt)
	}
	fmt.Fprintf(out, "Created: %s\n", conv.Created().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated: %s\n", conv.Updated().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Messages: %d\n", len(conv.Messages))
	fmt.Fprintln(out)

	for i, msg := range conv.Messages {
		role := "You"
		switch msg.Role {
		case models.RoleAssistant:
			role = "Assistant"
			if msg.Model != "" {
				role = msg.Model
			}
		case models.RoleSystem:
			role = "System"
		}
		stamp := ""
		if msg.Timestamp > 0 {
			stamp = " (" + time.UnixMilli(msg.Timestamp).Format("15:04") + ")"
		}
		fmt.Fprintf(out, "[%d] %s%s:\n", i+1, role, stamp)

		content := msg.Content
		if r := []rune(content); len(r) > 500 {
			content = string(r[:500]) + "..."
		}
		fmt.Fprintf(out, "  %s\n\n", strings.ReplaceAll(content, "\n", "\n  "))
	}
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	conv, err := history.NewResolver(app.Store).ResolveConversation(args[0])
	if err != nil {
		return err
	}

	app.Store.DeleteConversation(conv.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted conversation: %s (%s)\n", conv.Title, shortID(conv.ID))
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	n := len(app.Store.ListConversations())
	if !historyClearForce && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete %d conversations and the saved settings?", n)) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	app.Store.ClearAll()
	fmt.Fprintln(out, "All conversations deleted.")
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := history.NewResolver(app.Store).Resolve(args[0])
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(historyExportFormat) {
	case "md", "markdown":
		md, err := app.Store.ExportToMarkdown(id)
		if err != nil {
			return err
		}
		data = []byte(md)
	case "json":
		if data, err = app.Store.ExportToJSON(id); err != nil {
			return err
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format: %s (use md or json)", historyExportFormat)
	}

	if historyExportOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(historyExportOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", historyExportOutput)
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	results := app.Store.SearchConversations(args[0], historySearchBody)
	if len(results) == 0 {
		fmt.Fprintf(out, "No conversations match %q.\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tMATCH\tSNIPPET")
	_, _ = fmt.Fprintln(w, "--\t-----\t-----\t-------")
	for _, r := range results {
		snippet := strings.ReplaceAll(r.MatchSnippet, "\n", " ")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			shortID(r.Conversation.ID), truncateTitle(r.Conversation.Title, 40), r.MatchField, truncateTitle(snippet, 60))
	}
	return w.Flush()
}

// shortID returns the first 8 characters of an id, enough for the resolver
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// truncateTitle shortens s to max runes with an ellipsis
func truncateTitle(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
