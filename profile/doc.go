// Package profile provides optional runtime profiling for the stamp command.
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only
// when the "pprof" build tag is set. Without the tag, [Profiler.Start] is a
// no-op and [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     block (synchronization) profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// Deferred values settle on their own goroutines, so "block", "mutex", and
// "trace" are the most useful modes for studying how an expansion waits.
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// From the command line (built with -tags pprof):
//
//	stamp --pprof-mode trace page.html
//	go tool trace ~/.cache/stamp/pprof/trace.out
//
// When built with the tag, this package also imports [net/http/pprof], which
// registers its handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
