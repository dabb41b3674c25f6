package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/gatewaychat/internal/config"
	"github.com/diogo/gatewaychat/internal/models"
)

var (
	presetAddName        string
	presetAddDescription string
	presetAddModel       string
	presetAddTemperature float64
	presetAddSystem      string
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage presets",
	Long: `View and manage presets. A preset bundles a model, an optional temperature
and a system prompt. Your presets live in ~/.gatewaychat/presets.json and
override built-in presets with the same id.`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetList,
}

var presetShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show preset details",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetShow,
}

var presetUseCmd = &cobra.Command{
	Use:   "use <id|none>",
	Short: "Apply a preset to the stored selection",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetUse,
}

var presetAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a new preset",
	Long: `Add a new preset. Without --system the system prompt is read from stdin,
ending with an empty line.`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetAdd,
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your presets",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetDelete,
}

func init() {
	presetAddCmd.Flags().StringVar(&presetAddName, "name", "", "Display name (defaults to the id)")
	presetAddCmd.Flags().StringVar(&presetAddDescription, "description", "", "Short description")
	presetAddCmd.Flags().StringVarP(&presetAddModel, "model", "m", models.DefaultModel, "Model the preset selects")
	presetAddCmd.Flags().Float64VarP(&presetAddTemperature, "temperature", "t", 0, "Temperature the preset selects (kept as is when omitted)")
	presetAddCmd.Flags().StringVarP(&presetAddSystem, "system", "s", "", "System prompt")

	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetUseCmd)
	presetCmd.AddCommand(presetAddCmd)
	presetCmd.AddCommand(presetDeleteCmd)
}

func runPresetList(cmd *cobra.Command, args []string) error {
	presets, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMODEL\tTEMP\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t----\t-----------")

	for _, p := range presets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, models.DisplayName(p.Model), presetTemperature(p), p.Description)
	}

	return w.Flush()
}

func presetTemperature(p models.Preset) string {
	if p.Temperature == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *p.Temperature)
}

func runPresetShow(cmd *cobra.Command, args []string) error {
	p, err := config.GetPreset(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID: %s\n", p.ID)
	fmt.Fprintf(out, "Name: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(out, "Model: %s (%s)\n", models.DisplayName(p.Model), p.Model)
	fmt.Fprintf(out, "Temperature: %s\n", presetTemperature(p))
	fmt.Fprintf(out, "\nSystem Prompt:\n%s\n", p.SystemPrompt)

	return nil
}

func runPresetUse(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sel, _ := storedSelection(app)
	out := cmd.OutOrStdout()

	if id := args[0]; strings.EqualFold(id, "none") {
		sel = models.ClearPreset(sel)
		fmt.Fprintln(out, "Preset cleared.")
	} else {
		p, err := config.GetPreset(id)
		if err != nil {
			return err
		}
		sel = models.ApplyPreset(sel, p)
		fmt.Fprintf(out, "Preset '%s' applied.\n", p.ID)
	}

	saveSelection(app, sel)
	return printSelection(out, sel)
}

func runPresetAdd(cmd *cobra.Command, args []string) error {
	id := args[0]
	out := cmd.OutOrStdout()

	p := models.Preset{
		ID:           id,
		Name:         presetAddName,
		Description:  presetAddDescription,
		Model:        presetAddModel,
		SystemPrompt: presetAddSystem,
	}
	if p.Name == "" {
		p.Name = id
	}
	if cmd.Flags().Changed("temperature") {
		t := presetAddTemperature
		p.Temperature = &t
	}
	if !cmd.Flags().Changed("system") {
		fmt.Fprintln(out, "Enter system prompt (end with an empty line):")
		prompt, err := readParagraph(cmd.InOrStdin())
		if err != nil {
			return err
		}
		p.SystemPrompt = prompt
	}

	if err := config.AddPreset(p); err != nil {
		return err
	}

	fmt.Fprintf(out, "Preset '%s' created.\n", id)
	return nil
}

// readParagraph reads lines until an empty line or EOF
func readParagraph(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func runPresetDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	if err := config.DeletePreset(id); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Preset '%s' deleted.\n", id)
	return nil
}

// confirm asks a yes/no question on out and reads the answer from in
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
