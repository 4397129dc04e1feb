package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_Options_SetFields(t *testing.T) {
	c := makeConfig(nil,
		WithLevel(LevelDebug),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(true),
	)

	if c.level != LevelDebug {
		t.Errorf("level = %v, want %v", c.level, LevelDebug)
	}
	if c.format != FormatJSON {
		t.Errorf("format = %v, want %v", c.format, FormatJSON)
	}
	if !c.caller {
		t.Error("caller = false, want true")
	}
	if !c.pretty {
		t.Error("pretty = false, want true")
	}
	if c.output == nil {
		t.Error("output = nil, want io.Discard")
	}
}

func TestConfig_WithDefaults_ResetsFields(t *testing.T) {
	c := makeConfig(nil, WithLevel(LevelError), WithCaller(true))
	c = apply(c, WithDefaults(nil))

	if c.level != DefaultLevel {
		t.Errorf("level = %v, want %v", c.level, DefaultLevel)
	}
	if c.caller != DefaultCaller {
		t.Errorf("caller = %v, want %v", c.caller, DefaultCaller)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"info+2", LevelInfo + 2},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelTrace + 1, "trace+1"},
		{LevelTrace - 1, "trace-1"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelError + 4, "error+4"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevels_RoundTrip(t *testing.T) {
	names := slices.Collect(Levels())
	if len(names) != 5 {
		t.Fatalf("Levels() yielded %d names, want 5", len(names))
	}

	for _, name := range names {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for name := range Formats() {
		if ParseFormat(name).String() != name {
			t.Errorf("format %q does not round trip", name)
		}
	}
}

func TestMakeFormatTimeFunc(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 123456789, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"rfc3339", "RFC3339", "2024-03-05T14:07:09Z"},
		{"rfc3339 nano", "RFC3339Nano", "2024-03-05T14:07:09.123456789Z"},
		{"kitchen", "kitchen", "2:07PM"},
		{"date time", "DateTime", "2024-03-05 14:07:09"},
		{"custom", "2006/01/02", "2024/03/05"},
		{"none", "none", ""},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
				t.Errorf("format(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestConfig_Handler_DropsTimeWhenDisabled(t *testing.T) {
	var sb strings.Builder

	logger := Make(&sb, WithTimeLayout("none"))
	logger.Info("hello")

	if strings.Contains(sb.String(), "time=") {
		t.Errorf("expected no time attribute, got %q", sb.String())
	}
}
