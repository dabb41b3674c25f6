package render

import "testing"

func TestCloseOpenFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", "plain text", "plain text"},
		{"closed fence", "```go\nx := 1\n```\n", "```go\nx := 1\n```\n"},
		{"open fence", "```go\nx := 1", "```go\nx := 1\n```"},
		{"open fence trailing newline", "```\nx\n", "```\nx\n```"},
		{"longer fence", "````\n```\nstill code", "````\n```\nstill code\n````"},
		{"tilde fence", "~~~py\nprint()", "~~~py\nprint()\n~~~"},
		{"info string does not close", "```\na\n```go\n", "```\na\n```go\n```"},
		{"second block open", "```\na\n```\ntext\n```sh\nls", "```\na\n```\ntext\n```sh\nls\n```"},
		{"indented code is not a fence", "    ```\ncode", "    ```\ncode"},
		{"two backticks", "``inline``", "``inline``"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CloseOpenFence(tt.input); got != tt.want {
				t.Errorf("CloseOpenFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
