// Package terminal provides utilities for terminal operations such as clearing
// echoed prompts and reading secrets without echo.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

const defaultWidth = 80

// ClearPreviousLines clears text that was previously printed to stdout, such as
// a prompt together with the user's answer.
//
// textLength is the number of characters in prompt plus input. The line count
// follows the current terminal width, plus one for the line Enter created.
func ClearPreviousLines(textLength int) {
	width := defaultWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	clearLines(os.Stdout, textLength, width)
}

func clearLines(w io.Writer, textLength, width int) {
	totalLines := int(math.Ceil(float64(textLength) / float64(width)))
	if totalLines < 1 {
		totalLines = 1
	}
	linesToClear := totalLines + 1

	for i := 0; i < linesToClear; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < linesToClear-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Prompt prints prompt and reads one line from r, trimmed.
func Prompt(r *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret prints prompt and reads a line without echo when stdin is a
// terminal. Piped input is read as a plain line so scripts can supply secrets.
func ReadSecret(r *bufio.Reader, prompt string) (string, error) {
	return readSecret(r, prompt, IsInteractive())
}

func readSecret(r *bufio.Reader, prompt string, interactive bool) (string, error) {
	if !interactive {
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
