package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	cmd := rootCmd
	if cmd.Use != "gatewaychat [prompt]" {
		t.Errorf("Expected use 'gatewaychat [prompt]', got %s", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
	if cmd.Args == nil {
		t.Error("Args validation should be configured")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"chat", "config", "login", "history", "preset", "models", "settings"}
	got := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
	}{
		{"model", "m"},
		{"temperature", "t"},
		{"system", "s"},
		{"preset", "p"},
		{"continue", "c"},
		{"output", "o"},
		{"file", "f"},
		{"version", "v"},
		{"raw", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := rootCmd.Flags().Lookup(tt.name)
			if f == nil {
				t.Fatalf("flag --%s not defined", tt.name)
			}
			if f.Shorthand != tt.shorthand {
				t.Errorf("shorthand = %q, want %q", f.Shorthand, tt.shorthand)
			}
		})
	}

	for _, name := range []string{"log-level", "ephemeral"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s not defined", name)
		}
	}
}

func TestReadPrompt(t *testing.T) {
	dir := t.TempDir()
	promptFile := filepath.Join(dir, "prompt.md")
	if err := os.WriteFile(promptFile, []byte("from file"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		stdin   string
		file    string
		want    string
		wantErr bool
	}{
		{name: "argument only", args: []string{"hello"}, want: "hello"},
		{name: "stdin only", stdin: "piped text", want: "piped text"},
		{name: "argument then stdin", args: []string{"Summarize"}, stdin: "notes", want: "Summarize\n\nnotes"},
		{name: "blank stdin is ignored", args: []string{"hi"}, stdin: "  \n", want: "hi"},
		{name: "file wins over stdin", file: promptFile, stdin: "ignored", want: "from file"},
		{name: "argument then file", args: []string{"Review"}, file: promptFile, want: "Review\n\nfrom file"},
		{name: "missing file", file: filepath.Join(dir, "nope"), wantErr: true},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileFlag = tt.file
			defer func() { fileFlag = "" }()

			got, err := readPrompt(strings.NewReader(tt.stdin), tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readPrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasPipedInput(t *testing.T) {
	if !hasPipedInput(strings.NewReader("x")) {
		t.Error("non-file readers count as piped")
	}
	if hasPipedInput(nil) {
		t.Error("nil reader is not piped")
	}

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if !hasPipedInput(f) {
		t.Error("a regular file redirected to stdin counts as piped")
	}
}

func TestRootCommand_Version(t *testing.T) {
	setupTestEnv(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		_ = rootCmd.Flags().Set("version", "false")
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "gatewaychat "+Version) {
		t.Errorf("output = %q", out.String())
	}
}
