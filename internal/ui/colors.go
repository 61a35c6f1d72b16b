// Package ui holds the ANSI styling shared by help output and reports.
package ui

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Enabled reports whether styled output should be written to f.
// NO_COLOR (any value) and TERM=dumb turn styling off.
func Enabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Style wraps s in the given codes followed by a reset
func Style(s string, codes ...string) string {
	if len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + ColorReset
}

func Bold(s string) string {
	return Style(s, ColorBold)
}

func Success(s string) string {
	return Style(s, ColorGreen)
}

func Info(s string) string {
	return Style(s, ColorDim, ColorYellow)
}

func Warn(s string) string {
	return Style(s, ColorYellow)
}

func Error(s string) string {
	return Style(s, ColorRed)
}

// Heading styles a section title
func Heading(s string) string {
	return Style(s, ColorBold, ColorWhite)
}
