package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or reset the stored selection",
	Long: `The selection (model, temperature, system prompt and preset) is saved every
time it changes in the chat and restored on the next start.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored selection",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the stored selection to the configured defaults",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}

// storedSelection returns the saved selection, or the configured default
// when nothing is saved. Invalid fields fall back to the default.
func storedSelection(app *App) (models.Selection, bool) {
	def := app.Config.DefaultSelection()
	st, ok := app.Store.GetSettings()
	if !ok {
		return def, false
	}

	sel := models.Selection{
		Model:        st.SelectedModel,
		Temperature:  st.Temperature,
		SystemPrompt: st.SystemPrompt,
		PresetID:     st.PresetID,
	}
	if sel.Model == "" {
		sel.Model = def.Model
	}
	if !models.ValidTemperature(sel.Temperature) {
		sel.Temperature = def.Temperature
	}
	return sel, true
}

func saveSelection(app *App, sel models.Selection) {
	app.Store.SaveSettings(history.Settings{
		SelectedModel: sel.Model,
		Temperature:   sel.Temperature,
		SystemPrompt:  sel.SystemPrompt,
		PresetID:      sel.PresetID,
	})
}

func printSelection(out io.Writer, sel models.Selection) error {
	preset := sel.PresetID
	if preset == "" {
		preset = "(none)"
	}
	system := sel.SystemPrompt
	if system == "" {
		system = "(none)"
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Model:\t%s (%s)\n", models.DisplayName(sel.Model), sel.Model)
	_, _ = fmt.Fprintf(w, "Temperature:\t%.1f\n", sel.Temperature)
	_, _ = fmt.Fprintf(w, "Preset:\t%s\n", preset)
	_, _ = fmt.Fprintf(w, "System prompt:\t%s\n", truncateTitle(system, 80))
	return w.Flush()
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	sel, stored := storedSelection(app)
	if !stored {
		fmt.Fprintln(out, "No stored settings, showing the configured defaults.")
	}
	return printSelection(out, sel)
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sel := app.Config.DefaultSelection()
	saveSelection(app, sel)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Settings reset.")
	return printSelection(out, sel)
}
