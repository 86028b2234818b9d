package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_RespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf})
	l.Info("hidden")
	l.Warn("shown", "key", "cbb_members")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "cbb_members") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNew_JSONWithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(Config{Level: "debug", JSON: true, Output: &buf}).With("component", "storage")
	l.Debug("loaded")

	out := buf.String()
	if !strings.Contains(out, `"component":"storage"`) || !strings.Contains(out, `"msg":"loaded"`) {
		t.Fatalf("json output=%q", out)
	}
}
