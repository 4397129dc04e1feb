// Package cli contains the command line interface for stamp.
//
// # Usage
//
//	stamp [flags] [expand] TEMPLATE [--data FILE...] [--set KEY=EXPR...]
//	stamp outline TEMPLATE [--format yaml|json]
//	stamp check TEMPLATE [--data FILE...] [--strict]
//	stamp init [--force]
//
// Expand is the default command, so "stamp page.html -d data.yaml" expands
// page.html against data.yaml, waits for its deferred values, and prints the
// result.
//
// # Templates
//
// A TEMPLATE argument naming an existing file is read directly; "-" reads
// standard input. Any other name is looked up in the template search path:
// each --path (-I) directory, then each entry of $STAMP_PATH, then the
// "templates" directory beneath the configuration directory.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/stamp/config.yaml). Top-level keys name
// flags:
//
//	log-level: debug
//	path: [~/templates]
//	timeout: 10s
//
// "stamp init" writes the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o stamp .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/stamp/pprof)
//
// # Examples
//
//	# Expand with debug logging and a block profile
//	stamp --log-level=debug --pprof-mode=block page.html -d data.json
//
//	# Watch deferred values settle
//	stamp expand -w page.html -d data.yaml
//
//	# Report missing keys, failing if any
//	stamp check page.html -d data.hcl --strict
package cli
