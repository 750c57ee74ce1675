package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "info", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseLevel(tt.in)); diff != "" {
				t.Errorf("ParseLevel(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").With("component", "test")

	ctx := Ctx(context.Background(), slog.String("monitor", "stock"))
	ctx = Ctx(ctx, slog.String("cycle", "abc"))
	log.InfoContext(ctx, "cycle done")

	out := buf.String()
	for _, want := range []string{"monitor=stock", "cycle=abc", "component=test", `msg="cycle done"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q, got:\n%s", want, out)
		}
	}
}

func TestCtxDoesNotShareBacking(t *testing.T) {
	base := Ctx(context.Background(), slog.String("a", "1"))
	first := Ctx(base, slog.String("b", "2"))
	second := Ctx(base, slog.String("c", "3"))

	got1, _ := first.Value(attrKey).([]slog.Attr)
	got2, _ := second.Value(attrKey).([]slog.Attr)
	if len(got1) != 2 || len(got2) != 2 {
		t.Fatalf("unexpected attr counts: %d, %d", len(got1), len(got2))
	}
	if got1[1].Key != "b" || got2[1].Key != "c" {
		t.Errorf("attrs leaked between contexts: %v / %v", got1, got2)
	}
}
