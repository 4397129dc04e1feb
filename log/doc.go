// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package offers configurable time formatting, caller information,
// and output formats that are applied at logger creation time using
// functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("expansion started", slog.String("template", name))
//	logger.Error("binding rejected", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// # Zero Value
//
// A zero [Logger] discards all output. Components that accept an optional
// logger can store one by value and log unconditionally.
//
// # Context-Aware Logging
//
// Each level has a context-aware and a context-unaware variant. The latter
// uses [DefaultContextProvider], which returns [context.TODO] by default.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-binding events
// such as placeholder scheduling and settlement.
//
// # Output Formats
//
// Two output formats are supported: [FormatText] (default) and
// [FormatJSON]. Either can be styled for terminals with [WithPretty], which
// renders through lipgloss and degrades to plain text when the output is not
// a terminal.
package log
