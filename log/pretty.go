package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used to render each kind of value. Styles are bound
// to a renderer for the handler's writer, so output to a file or pipe carries
// no escape sequences.
type palette struct {
	key, str, num, dur, time, null lipgloss.Style
	level                          map[slog.Level]lipgloss.Style
	yes, no                        lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		dur:  fg("5"),
		time: fg("4"),
		null: fg("8"),
		yes:  fg("2"),
		no:   fg("1"),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("4").Faint(true),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2"),
			slog.LevelWarn:         fg("3"),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

func (p palette) levelStyle(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.level[slog.LevelError]
	case l >= slog.LevelWarn:
		return p.level[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return p.level[slog.LevelInfo]
	case l >= slog.LevelDebug:
		return p.level[slog.LevelDebug]
	default:
		return p.level[slog.Level(LevelTrace)]
	}
}

// shared is the state common to a handler and every handler derived from it
// by WithAttrs or WithGroup.
type shared struct {
	opts    slog.HandlerOptions
	palette palette
	mu      sync.Mutex
	w       io.Writer
}

func (s *shared) enabled(level slog.Level) bool {
	floor := slog.LevelInfo
	if s.opts.Level != nil {
		floor = s.opts.Level.Level()
	}

	return level >= floor
}

func (s *shared) replace(a slog.Attr) slog.Attr {
	if s.opts.ReplaceAttr == nil {
		return a
	}

	return s.opts.ReplaceAttr(nil, a)
}

func (s *shared) write(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.w.Write(buf)

	return err
}

// header returns the built-in record attributes in output order, after
// ReplaceAttr has been applied.
func (s *shared) header(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		attrs = append(attrs, s.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	attrs = append(attrs, slog.Any(slog.LevelKey, r.Level))

	if s.opts.AddSource {
		if src := r.Source(); src != nil {
			attrs = append(attrs, slog.String(
				slog.SourceKey, src.File+":"+strconv.Itoa(src.Line),
			))
		}
	}

	attrs = append(attrs, slog.String(slog.MessageKey, r.Message))

	return attrs
}

// prettyTextHandler writes one colorized key=value line per record.
type prettyTextHandler struct {
	*shared
	prefix string
	attrs  string
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyTextHandler {
	return &prettyTextHandler{
		shared: &shared{opts: *opts, palette: newPalette(w), w: w},
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	for _, a := range h.header(r) {
		h.writeAttr(&buf, "", a)
	}

	if h.attrs != "" {
		buf.WriteByte(' ')
		buf.WriteString(h.attrs)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	return h.write(buf.Bytes())
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer

	buf.WriteString(h.attrs)

	for _, a := range attrs {
		h.writeAttr(&buf, h.prefix, a)
	}

	return &prettyTextHandler{shared: h.shared, prefix: h.prefix, attrs: buf.String()}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &prettyTextHandler{
		shared: h.shared,
		prefix: h.prefix + name + ".",
		attrs:  h.attrs,
	}
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.writeAttr(buf, prefix, g)
		}

		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(h.palette.key.Render(prefix + a.Key))
	buf.WriteByte('=')
	buf.WriteString(h.renderValue(a.Value))
}

func (h *prettyTextHandler) renderValue(v slog.Value) string {
	p := h.palette

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())
	case slog.KindTime:
		return p.time.Render(v.Time().String())
	default:
		if level, ok := v.Any().(slog.Level); ok {
			return p.levelStyle(level).Render(strings.ToUpper(Level(level).String()))
		}

		if v.Any() == nil {
			return p.null.Render("<nil>")
		}

		return p.str.Render(v.String())
	}
}

// prettyJSONHandler writes one indented, colorized JSON object per record.
type prettyJSONHandler struct {
	*shared
	groups []string
	attrs  []slog.Attr
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyJSONHandler {
	return &prettyJSONHandler{
		shared: &shared{opts: *opts, palette: newPalette(w), w: w},
	}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	fields := h.header(r)

	var own []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)

		return true
	})

	// Attributes added by WithAttrs belong to the groups open at the time,
	// which are modeled here as nesting the record's attributes under them.
	body := append(append([]slog.Attr{}, h.attrs...), own...)
	for i := len(h.groups) - 1; i >= 0; i-- {
		body = []slog.Attr{{Key: h.groups[i], Value: slog.GroupValue(body...)}}
	}

	h.writeObject(&buf, append(fields, body...), 1)
	buf.WriteByte('\n')

	return h.write(buf.Bytes())
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &prettyJSONHandler{shared: h.shared, groups: h.groups}
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return next
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return &prettyJSONHandler{
		shared: h.shared,
		groups: append(h.groups[:len(h.groups):len(h.groups)], name),
		attrs:  h.attrs,
	}
}

func (h *prettyJSONHandler) writeObject(buf *bytes.Buffer, attrs []slog.Attr, depth int) {
	indent := strings.Repeat("  ", depth)

	buf.WriteString("{")

	first := true
	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteByte('\n')
		buf.WriteString(indent)
		buf.WriteString(h.palette.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")

		if a.Value.Kind() == slog.KindGroup {
			h.writeObject(buf, a.Value.Group(), depth+1)

			continue
		}

		buf.WriteString(h.renderValue(a.Value))
	}

	if !first {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat("  ", depth-1))
	}

	buf.WriteString("}")
}

func (h *prettyJSONHandler) renderValue(v slog.Value) string {
	p := h.palette

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(strconv.Quote(v.String()))
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.dur.Render(strconv.Quote(v.Duration().String()))
	case slog.KindTime:
		return p.time.Render(strconv.Quote(v.Time().Format("2006-01-02T15:04:05Z07:00")))
	}

	switch x := v.Any().(type) {
	case slog.Level:
		return p.levelStyle(x).Render(strconv.Quote(strings.ToUpper(Level(x).String())))
	case nil:
		return p.null.Render("null")
	case error:
		return p.str.Render(strconv.Quote(x.Error()))
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return p.str.Render(strconv.Quote(fmt.Sprint(x)))
		}

		return p.str.Render(string(b))
	}
}
