package diagnostics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrintLoadedNoColor(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(false)
	f.PrintLoaded(&buf, "wget", "apt", "/usr/bin/wget", "1.21.3")

	got := buf.String()
	if !strings.Contains(got, "wget -> /usr/bin/wget (apt, 1.21.3)") {
		t.Errorf("unexpected output: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Errorf("expected no ANSI escapes with UseColor=false, got %q", got)
	}
}

func TestPrintFailedNoColor(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(false)
	f.PrintFailed(&buf, "wget", errors.New("all providers failed"))

	got := buf.String()
	if !strings.Contains(got, "wget: all providers failed") {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestPrintDryRunNoColor(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(false)
	f.PrintDryRun(&buf, "wget")

	got := buf.String()
	if !strings.Contains(got, "DRY RUN: wget not installed") {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(3, 0); got != "3 binar(ies) resolved" {
		t.Errorf("got %q", got)
	}
	if got := Summarize(2, 1); got != "2 resolved, 1 failed" {
		t.Errorf("got %q", got)
	}
}
