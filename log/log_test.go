package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}
	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}
	if logger.caller {
		t.Error("expected caller disabled by default")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		log    func(Logger)
		logged bool
	}{
		{"trace below debug", LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"debug at debug", LevelDebug, func(l Logger) { l.Debug("m") }, true},
		{"info below error", LevelError, func(l Logger) { l.Info("m") }, false},
		{"warn at warn", LevelWarn, func(l Logger) { l.Warn("m") }, true},
		{"error at warn", LevelWarn, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_WithCaller_ReportsCallSite(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Info("here")

	if !strings.Contains(buf.String(), "log_test.go:") {
		t.Errorf("expected caller file in output, got %q", buf.String())
	}

	buf.Reset()
	Make(&buf, WithCaller(false)).Info("here")

	if strings.Contains(buf.String(), "source=") {
		t.Errorf("unexpected source in output, got %q", buf.String())
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON))
	logger.Info("test message", slog.String("key", "value"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if result["msg"] != "test message" {
		t.Errorf("msg = %v, want %q", result["msg"], "test message")
	}
	if result["key"] != "value" {
		t.Errorf("key = %v, want %q", result["key"], "value")
	}
	if result["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", result["level"])
	}
}

func TestLogger_WithClock(t *testing.T) {
	var buf bytes.Buffer

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	logger := Make(&buf, WithClock(func() time.Time { return ts }))
	logger.Info("tick")

	if !strings.Contains(buf.String(), "time=2024-01-02T03:04:05Z") {
		t.Errorf("expected fixed timestamp, got %q", buf.String())
	}
}

func TestLogger_Wrap_OverridesAndKeeps(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelWarn), WithFormat(FormatJSON))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if wrapped.Level() != LevelDebug {
		t.Errorf("Level() = %v, want %v", wrapped.Level(), LevelDebug)
	}
	if wrapped.Format() != FormatJSON {
		t.Errorf("Format() = %v, want %v", wrapped.Format(), FormatJSON)
	}
	if base.Level() != LevelWarn {
		t.Errorf("base Level() changed to %v", base.Level())
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none")).With(slog.String("run", "x"))
	logger.Info("msg", slog.Int("n", 1))

	if got, want := buf.String(), "level=INFO msg=msg run=x n=1\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLogger_WithGroup_QualifiesKeys(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none")).WithGroup("tmpl")
	logger.Info("msg", slog.String("key", "items"))

	if !strings.Contains(buf.String(), "tmpl.key=items") {
		t.Errorf("expected grouped key, got %q", buf.String())
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var logger Logger

	logger.Trace("trace")
	logger.Debug("debug")
	logger.InfoContext(context.Background(), "info")
	logger.Warn("warn")
	logger.Error("error")

	if logger.Enabled(context.Background(), LevelError) {
		t.Error("zero Logger reports Enabled")
	}
	if got := logger.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("With on zero Logger produced a live logger")
	}
	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	var buf safeBuffer

	logger := Make(&buf)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			for range 10 {
				logger.Info("concurrent", slog.Int("goroutine", i))
			}
		})
	}
	wg.Wait()

	if lines := strings.Count(buf.String(), "\n"); lines != 100 {
		t.Errorf("got %d lines, want 100", lines)
	}
}

func TestPretty_Text_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithTimeLayout("none")).
		With(slog.String("run", "r"))
	logger.Warn("slow", slog.Bool("ok", false), slog.Duration("d", time.Second))

	want := "level=WARN msg=slow run=r ok=false d=1s\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPretty_JSON_Indented(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithPretty(true),
		WithFormat(FormatJSON),
		WithTimeLayout("none"),
	).WithGroup("g")
	logger.Info("hi", slog.Int("n", 3))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("pretty JSON is not valid JSON: %v\n%s", err, buf.String())
	}

	group, ok := result["g"].(map[string]any)
	if !ok || group["n"] != float64(3) {
		t.Errorf("g = %v, want map with n=3", result["g"])
	}
	if !strings.Contains(buf.String(), "\n  \"msg\": \"hi\"") {
		t.Errorf("expected indented msg field, got %s", buf.String())
	}
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Make(&bytes.Buffer{})

	for b.Loop() {
		logger.Info("benchmark message", slog.String("key", "value"))
	}
}

func BenchmarkLogger_Info_Disabled(b *testing.B) {
	logger := Make(&bytes.Buffer{}, WithLevel(LevelError))

	for b.Loop() {
		logger.Info("benchmark message", slog.String("key", "value"))
	}
}
