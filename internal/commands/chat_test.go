package commands

import (
	"strings"
	"testing"
)

func TestResumeConversation(t *testing.T) {
	setupTestEnv(t)
	old := sampleConversation("dddddddd-0004", "Kubernetes probes", 5_000_000)
	old.Model = "o3"
	old.Temperature = 0.3
	old.SystemPrompt = "be an SRE"
	seedConversations(t, old, sampleConversation("eeeeeeee-0005", "Zig comptime", 1_000_000))

	app, err := openApp()
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	sh, err := app.NewShell(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := resumeConversation(app.Store, sh, "probes"); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := sh.Session().ID(); got != old.ID {
		t.Errorf("session = %s, want %s", got, old.ID)
	}
	sel := sh.Selection()
	if sel.Model != "o3" || sel.Temperature != 0.3 || sel.SystemPrompt != "be an SRE" {
		t.Errorf("selection = %+v", sel)
	}

	err = resumeConversation(app.Store, sh, "no such conversation")
	if err == nil || !strings.Contains(err.Error(), "cannot resume") {
		t.Errorf("err = %v", err)
	}
}

func TestChatCommand(t *testing.T) {
	for _, name := range []string{"resume", "metrics-addr"} {
		if chatCmd.Flags().Lookup(name) == nil {
			t.Errorf("--%s not registered", name)
		}
	}
	if f := chatCmd.Flags().ShorthandLookup("r"); f == nil || f.Name != "resume" {
		t.Error("-r should be --resume")
	}
}
