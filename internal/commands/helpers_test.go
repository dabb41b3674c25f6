package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/diogo/gatewaychat/internal/config"
	"github.com/diogo/gatewaychat/internal/gateway"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/pkg/logger"
)

type testEnv struct {
	home   string
	client *gateway.ScriptedClient
}

// setupTestEnv points HOME at a temp dir and replaces the gateway with a
// scripted client. Package-level flags are reset afterwards.
func setupTestEnv(t *testing.T, scripts ...gateway.Script) *testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvOpenAIKey, "")
	t.Setenv(config.EnvAnthropicKey, "")

	client := gateway.NewScriptedClient(scripts...)
	old := deps
	deps = &Dependencies{
		LoadConfig:  config.LoadConfig,
		NewLogger:   func(level, path string) (*logger.Logger, error) { return logger.Nop(), nil },
		OpenBackend: history.OpenBackend,
		NewClient:   func(config.Config) (gateway.Client, error) { return client, nil },
	}
	t.Cleanup(func() {
		deps = old
		resetFlags()
	})

	return &testEnv{home: home, client: client}
}

func resetFlags() {
	logLevelFlag, ephemeralFlag = "", false
	modelFlag, temperatureFlag, systemFlag, presetFlag = "", 0, "", ""
	continueFlag, outputFlag, fileFlag, rawFlag = "", "", "", false
	chatResumeFlag, chatMetricsAddr = "", ""
	historyListLimit, historyExportFormat, historyExportOutput = 0, "md", ""
	historySearchBody, historyClearForce = false, false
	presetAddName, presetAddDescription, presetAddModel = "", "", ""
	presetAddTemperature, presetAddSystem = 0, ""
	modelsCategoryFlag = ""
	loginToken, loginFile, loginBrowser, loginList, loginStatus = "", "", "", false, false
	configPathFlag = false
}

// withStore opens the store the commands use and hands it to fn
func withStore(t *testing.T, fn func(*history.Store)) {
	t.Helper()
	app, err := openApp()
	if err != nil {
		t.Fatalf("openApp: %v", err)
	}
	defer app.Close()
	fn(app.Store)
}

// runCmd calls a RunE function on a fresh command with captured output
func runCmd(t *testing.T, run func(*cobra.Command, []string) error, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := run(cmd, args)
	return out.String(), err
}

func seedConversations(t *testing.T, convs ...history.Conversation) {
	t.Helper()
	withStore(t, func(s *history.Store) {
		for _, c := range convs {
			s.SaveConversation(c)
		}
	})
}

func sampleConversation(id, title string, updated int64) history.Conversation {
	return history.Conversation{
		ID:          id,
		Title:       title,
		Model:       "gpt-5",
		Temperature: 0.7,
		CreatedAt:   updated - 1000,
		UpdatedAt:   updated,
		Messages: []history.Message{
			{ID: id + "-1", Role: "user", Content: "question about " + title, Timestamp: updated - 1000},
			{ID: id + "-2", Role: "assistant", Content: "answer about " + title, Timestamp: updated, Model: "GPT-5"},
		},
	}
}
