package terminal

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestClearLines(t *testing.T) {
	tests := []struct {
		name       string
		textLength int
		width      int
		wantUps    int
	}{
		{name: "empty input", textLength: 0, width: 80, wantUps: 1},
		{name: "single line", textLength: 40, width: 80, wantUps: 1},
		{name: "exact width", textLength: 80, width: 80, wantUps: 1},
		{name: "wrapped", textLength: 81, width: 80, wantUps: 2},
		{name: "narrow terminal", textLength: 100, width: 20, wantUps: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			clearLines(&buf, tt.textLength, tt.width)
			out := buf.String()
			if got := strings.Count(out, "\x1b[1A"); got != tt.wantUps {
				t.Errorf("cursor-up count = %d, want %d", got, tt.wantUps)
			}
			if got := strings.Count(out, "\x1b[2K"); got != tt.wantUps+1 {
				t.Errorf("clear-line count = %d, want %d", got, tt.wantUps+1)
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("  alice  \nnext\n"))
	got, err := Prompt(r, "Username: ")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if got != "alice" {
		t.Errorf("Prompt() = %q, want alice", got)
	}
}

func TestReadSecretFromPipe(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("s3cret pass\n"))
	got, err := readSecret(r, "Password: ", false)
	if err != nil {
		t.Fatalf("readSecret() error = %v", err)
	}
	if got != "s3cret pass" {
		t.Errorf("readSecret() = %q", got)
	}
}
