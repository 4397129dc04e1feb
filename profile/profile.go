package profile

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unsupported mode disables
	// profiling.
	Mode string
	// Path is the directory profile output is written to. If empty, a
	// temporary directory is used.
	Path string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Start begins profiling and returns a [Stopper] for the session.
// Start and the returned Stop are always safe to call, even when the binary
// was built without profiling support.
func (p Profiler) Start() Stopper {
	if p.Mode == "" || !Supported(p.Mode) {
		return ignore{}
	}

	return start(p)
}

// Supported reports whether mode is available in this build.
func Supported(mode string) bool {
	for _, m := range Modes() {
		if m == mode {
			return true
		}
	}

	return false
}

type ignore struct{}

func (ignore) Stop() {}
