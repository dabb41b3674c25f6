// Package commands provides the CLI commands for gatewaychat.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	logLevelFlag  string
	ephemeralFlag bool

	// One-shot flags
	modelFlag       string
	temperatureFlag float64
	systemFlag      string
	presetFlag      string
	continueFlag    string
	outputFlag      string
	fileFlag        string
	rawFlag         bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gatewaychat [prompt]",
	Short: "Chat with AI models through a managed gateway",
	Long: `gatewaychat talks to many AI models (GPT, Claude, Gemini, Grok, ...) through
a single gateway. Conversations and settings are kept in ~/.gatewaychat.

Examples:
  gatewaychat chat                       Start the interactive chat
  gatewaychat "What is Go?"              Send a single prompt
  gatewaychat -m o3 -t 0.2 "Explain CRDTs"
  gatewaychat -p coder -f prompt.md      Read prompt from file with a preset
  cat notes.md | gatewaychat "Summarize" Read prompt from stdin
  gatewaychat -c @last "And in Rust?"    Continue the latest conversation
  gatewaychat "Hello" -o response.md     Save response to file`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "gatewaychat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		prompt, err := readPrompt(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		if prompt == "" {
			return cmd.Help()
		}

		opts := queryOptionsFromFlags(cmd.Flags().Changed)
		return runQuery(commandContext(cmd), cmd.OutOrStdout(), cmd.ErrOrStderr(), prompt, opts)
	},
}

// readPrompt builds the prompt from -f, piped stdin and the positional
// argument. Piped input is placed after the argument so
// "cat file | gatewaychat summarize" works.
func readPrompt(stdin io.Reader, args []string) (string, error) {
	var parts []string
	if len(args) > 0 {
		parts = append(parts, args[0])
	}

	var data []byte
	var err error
	switch {
	case fileFlag != "":
		if data, err = os.ReadFile(fileFlag); err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	case hasPipedInput(stdin):
		if data, err = io.ReadAll(stdin); err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	if strings.TrimSpace(string(data)) != "" {
		parts = append(parts, string(data))
	}

	return strings.Join(parts, "\n\n"), nil
}

// hasPipedInput reports whether r is stdin redirected from a pipe or file.
// Readers other than a file (tests) always count as piped.
func hasPipedInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&ephemeralFlag, "ephemeral", false, "Keep history in memory only for this run")

	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model to use (see 'gatewaychat models')")
	rootCmd.Flags().Float64VarP(&temperatureFlag, "temperature", "t", 0, "Sampling temperature between 0 and 2")
	rootCmd.Flags().StringVarP(&systemFlag, "system", "s", "", "System prompt for this send")
	rootCmd.Flags().StringVarP(&presetFlag, "preset", "p", "", "Preset to apply (see 'gatewaychat preset list')")
	rootCmd.Flags().StringVarP(&continueFlag, "continue", "c", "", "Continue a stored conversation (@last, index, id or title)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Stream plain text even on a terminal")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(settingsCmd)
}
