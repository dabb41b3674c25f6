package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/gatewaychat/internal/browser"
	"github.com/diogo/gatewaychat/internal/config"
)

var (
	loginToken   string
	loginFile    string
	loginBrowser string
	loginList    bool
	loginStatus  bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the gateway auth token",
	Long: `Store the token used to authenticate against the gateway.

The token can be given directly, imported from a file, read from stdin or
extracted from a browser where you are logged into ` + browser.TokenDomain + `.

Token files may contain {"token": "..."}, a cookie dictionary
{"` + config.TokenCookieName + `": "..."}, a cookie export list
[{"name": "` + config.TokenCookieName + `", "value": "..."}] or the bare token.

GATEWAYCHAT_TOKEN always takes precedence over the stored token.

IMPORTANT for --browser:
- Close the browser before running this command to avoid database locks
- On macOS, you may be prompted for keychain access

Supported browsers: ` + SupportedBrowsersHelp(),
	Example: `  gatewaychat login --token eyJhbGciOi...
  gatewaychat login --file ~/Downloads/cookies.json
  gatewaychat login --browser firefox
  echo "$TOKEN" | gatewaychat login
  gatewaychat login --status`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch {
		case loginList:
			return runListBrowsers(out)
		case loginStatus:
			return runLoginStatus(out)
		case loginToken != "":
			return saveToken(out, loginToken, "flag")
		case loginFile != "":
			return runImportToken(out, loginFile)
		case loginBrowser != "":
			return runBrowserLogin(commandContext(cmd), out, loginBrowser)
		}
		return runInteractiveLogin(commandContext(cmd), cmd.InOrStdin(), out)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Token value to store")
	loginCmd.Flags().StringVarP(&loginFile, "file", "f", "", "Import the token from a file")
	loginCmd.Flags().StringVarP(&loginBrowser, "browser", "b", "",
		"Extract the token from a browser ("+SupportedBrowsersHelp()+", auto)")
	loginCmd.Flags().BoolVarP(&loginList, "list", "l", false, "List available browsers with cookie stores")
	loginCmd.Flags().BoolVar(&loginStatus, "status", false, "Show where the current token comes from")
	loginCmd.MarkFlagsMutuallyExclusive("token", "file", "browser", "list", "status")
}

func saveToken(out io.Writer, token, source string) error {
	if err := config.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	path, _ := config.GetTokenPath()
	fmt.Fprintf(out, "Token from %s saved to %s\n", source, path)
	fmt.Fprintf(out, "  %s: %s\n", config.TokenCookieName, config.MaskToken(strings.TrimSpace(token)))
	return nil
}

func runImportToken(out io.Writer, sourcePath string) error {
	if err := config.ImportToken(sourcePath); err != nil {
		return fmt.Errorf("failed to import token: %w", err)
	}

	path, _ := config.GetTokenPath()
	fmt.Fprintf(out, "Token imported successfully to %s\n", path)
	return nil
}

func runBrowserLogin(ctx context.Context, out io.Writer, browserName string) error {
	targetBrowser, err := browser.ParseBrowser(browserName)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Extracting token from browser...")
	fmt.Fprintln(out, "Note: If the browser is open, you may encounter database lock errors.")
	fmt.Fprintln(out)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := browser.ExtractToken(ctx, targetBrowser)
	if err != nil {
		return fmt.Errorf("failed to extract token: %w", err)
	}

	if err := saveToken(out, result.Token, result.BrowserName); err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "You can now chat with 'gatewaychat chat'.")
	return nil
}

// runInteractiveLogin reads the token from piped stdin, or asks for it on
// a terminal. An empty answer falls back to the browsers.
func runInteractiveLogin(ctx context.Context, in io.Reader, out io.Writer) error {
	f, isFile := in.(*os.File)
	if isFile && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Paste your token (leave empty to read it from a browser): ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		if token := strings.TrimSpace(string(raw)); token != "" {
			return saveToken(out, token, "terminal")
		}
		return runBrowserLogin(ctx, out, string(browser.BrowserAuto))
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return runBrowserLogin(ctx, out, string(browser.BrowserAuto))
	}
	return saveToken(out, string(data), "stdin")
}

func runLoginStatus(out io.Writer) error {
	if v := strings.TrimSpace(os.Getenv(config.EnvToken)); v != "" {
		fmt.Fprintf(out, "Using %s from the environment: %s\n", config.EnvToken, config.MaskToken(v))
		return nil
	}

	path, _ := config.GetTokenPath()
	token, err := config.LoadToken()
	if err != nil {
		fmt.Fprintln(out, "Not logged in.")
		fmt.Fprintln(out, "Run 'gatewaychat login --browser auto' or 'gatewaychat login --token <token>'.")
		return nil
	}
	fmt.Fprintf(out, "Token stored in %s: %s\n", path, config.MaskToken(token))
	return nil
}

func runListBrowsers(out io.Writer) error {
	browsers := browser.ListAvailableBrowsers()

	if len(browsers) == 0 {
		fmt.Fprintln(out, "No browsers with cookie stores found.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Supported browsers:")
		for _, b := range browser.AllSupportedBrowsers() {
			fmt.Fprintf(out, "  - %s\n", b)
		}
		return nil
	}

	fmt.Fprintln(out, "Available browsers with cookie stores:")
	for _, b := range browsers {
		fmt.Fprintf(out, "  - %s\n", b)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use 'gatewaychat login -b <browser>' to extract the token from a specific browser.")

	return nil
}

// SupportedBrowsersHelp returns a help string listing supported browsers
func SupportedBrowsersHelp() string {
	browsers := browser.AllSupportedBrowsers()
	names := make([]string, len(browsers))
	for i, b := range browsers {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
