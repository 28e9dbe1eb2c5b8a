package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Plain("plain %d", 1)
	p.Success("ok %s", "17")
	p.Error("failed")
	p.Warn("careful")
	p.Info("downloading")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	for i, want := range []string{"plain 1", "ok 17", "failed", "careful", "downloading"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q; expected it to contain %q", i, lines[i], want)
		}
	}
}

func TestNilPrinterDiscards(t *testing.T) {
	p := NewPrinter(nil)
	p.Success("nothing to see")
}
