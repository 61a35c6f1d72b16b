package ui

import (
	"os"
	"testing"
)

func TestStyle(t *testing.T) {
	if got := Style("x"); got != "x" {
		t.Errorf("Expected plain text without codes, got %q", got)
	}
	if got := Bold("x"); got != ColorBold+"x"+ColorReset {
		t.Errorf("Unexpected bold output %q", got)
	}
	if got := Info("x"); got != ColorDim+ColorYellow+"x"+ColorReset {
		t.Errorf("Unexpected info output %q", got)
	}
}

func TestEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if Enabled(os.Stdout) {
		t.Error("Expected NO_COLOR to disable styling")
	}
}

func TestEnabled_NotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if Enabled(f) {
		t.Error("Expected a regular file to disable styling")
	}
}
