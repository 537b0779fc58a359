// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal provides utilities for terminal operations such as clearing
// prompts and reading secrets without echo.
package terminal

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"atomicgo.dev/cursor"
	"golang.org/x/term"
)

// ClearPreviousLines clears a prompt and its input from the terminal.
// textLength is the number of characters printed (prompt + user input); the
// line count follows the current terminal width, plus the line Enter created.
func ClearPreviousLines(textLength int) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	cursor.ClearLinesUp(LinesFor(textLength, width))
	cursor.StartOfLine()
}

// LinesFor returns how many terminal lines textLength characters occupy at the
// given width, including the empty line left by Enter.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	lines := int(math.Ceil(float64(textLength) / float64(width)))
	if lines < 1 {
		lines = 1
	}
	return lines + 1
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadSecret prints prompt and reads one line without echo. When stdin is not
// a terminal the line is read as-is, so secrets can be piped in.
func ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)

	if !IsInteractive() {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	secret := strings.TrimSpace(string(b))
	ClearPreviousLines(len(prompt))
	return secret, nil
}
