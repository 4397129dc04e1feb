package tmpl

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Directive identifies a template construct.
type Directive int

const (
	// Literal is template text outside any block.
	Literal Directive = iota
	// Each is an iteration block: "#each path" ... "/each".
	Each
	// With is a scoped block: "#with path" ... "/with".
	With
	// Ref is a variable reference: "@path".
	Ref
)

// String returns the name used for the directive in templates.
func (d Directive) String() string {
	switch d {
	case Literal:
		return "literal"
	case Each:
		return "each"
	case With:
		return "with"
	case Ref:
		return "ref"
	default:
		return "unknown"
	}
}

// MarshalText encodes the directive by name.
func (d Directive) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Position locates text within a template. Line and Column are 1-based;
// Column counts runes.
type Position struct {
	Offset int `json:"-"      yaml:"-"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// positionOf returns the Position of byte offset off in src.
func positionOf(src string, off int) Position {
	off = min(max(off, 0), len(src))
	head := src[:off]
	bol := strings.LastIndexByte(head, '\n') + 1

	return Position{
		Offset: off,
		Line:   strings.Count(head, "\n") + 1,
		Column: utf8.RuneCountInString(head[bol:]) + 1,
	}
}

// Segment is a span of template text: either literal text or one complete
// top-level block, including its opening and closing tags.
type Segment struct {
	Directive Directive
	Text      string
	Pos       Position
}

// Block is the result of extracting a block directive.
type Block struct {
	Directive Directive
	// Path is the key the block is bound to.
	Path string
	// Body is the text between the opening and closing tag lines.
	Body string
	// BodyOffset is the byte offset of Body within the block text.
	BodyOffset int
}

// blockDirectives are the directives that open and close a block.
var blockDirectives = []Directive{Each, With}

// Extract parses the block text of directive d. The bound path is the first
// whitespace-delimited token after the directive name on the opening line;
// the body is every line between the opening and closing lines.
func Extract(d Directive, block string) (Block, error) {
	name := d.String()
	fail := func(reason string, off int) (Block, error) {
		return Block{}, ErrMalformedDirective.
			With(slog.String("directive", name), slog.String("reason", reason)).
			WithPosition(positionOf(block, off))
	}

	lines := strings.Split(block, "\n")
	if len(lines) < 2 {
		return fail("missing closing tag", len(block))
	}

	first := lines[0]

	at := strings.Index(first, "#"+name)
	if at < 0 {
		return fail("missing opening tag", 0)
	}

	rest := first[at+1+len(name):]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return fail("missing opening tag", at)
	}

	path := strings.Fields(rest)
	if len(path) == 0 {
		return fail("missing bound path", at)
	}

	last := lines[len(lines)-1]
	if !strings.HasPrefix(strings.TrimLeftFunc(last, unicode.IsSpace), "/"+name) {
		return fail("missing closing tag", len(block)-len(last))
	}

	return Block{
		Directive:  d,
		Path:       path[0],
		Body:       strings.Join(lines[1:len(lines)-1], "\n"),
		BodyOffset: len(first) + 1,
	}, nil
}

// Scan splits a template into literal segments and top-level block segments.
// Nested blocks are balanced but left inside their enclosing segment.
//
// An opening tag without a matching closing tag is literal text, as is a
// closing tag with no open block of its kind. An opening tag with no bound
// path, or a closing tag that would close a block while a block of another
// kind opened inside it is still open, fails with [ErrMalformedDirective].
func Scan(template string) ([]Segment, error) {
	s := scanner{src: template, literal: map[int]bool{}}

	return s.scan()
}

type openTag struct {
	directive Directive
	offset    int
}

type scanner struct {
	src   string
	pos   int
	lit   int // start of pending literal text
	stack []openTag
	segs  []Segment

	literal map[int]bool // offsets of opening tags that are never closed
}

// scan repeats a pass over the source until every opening tag it keeps is
// closed. Tags left open by a pass are literal in the next.
func (s *scanner) scan() ([]Segment, error) {
	for {
		if err := s.pass(); err != nil {
			return nil, err
		}

		if len(s.stack) == 0 {
			break
		}

		for _, tag := range s.stack {
			s.literal[tag.offset] = true
		}

		s.pos, s.lit, s.stack, s.segs = 0, 0, nil, nil
	}

	s.emit(Literal, s.lit, len(s.src))

	return s.segs, nil
}

func (s *scanner) pass() error {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '#':
			ok, err := s.open()
			if err != nil {
				return err
			}

			if ok {
				continue
			}

		case '\n':
			ok, err := s.close()
			if err != nil {
				return err
			}

			if ok {
				continue
			}
		}

		s.pos++
	}

	return nil
}

// open consumes an opening tag at s.pos, leaving s.pos on the newline that
// ends it so that the newline can also begin an immediate closing tag.
func (s *scanner) open() (bool, error) {
	d, ok := s.match(s.pos+1, '#')
	if !ok || s.literal[s.pos] {
		return false, nil
	}

	start := s.pos
	head := s.src[start+1+len(d.String()):]

	eol := strings.IndexByte(head, '\n')
	if eol < 0 {
		return false, nil
	}

	if len(strings.Fields(head[:eol])) == 0 {
		return false, s.malformed(d, "missing bound path", start)
	}

	s.stack = append(s.stack, openTag{directive: d, offset: start})
	s.pos = start + 1 + len(d.String()) + eol

	return true, nil
}

// close consumes a closing tag that begins with the newline at s.pos.
func (s *scanner) close() (bool, error) {
	i := s.pos + 1
	for i < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[i:])
		if !unicode.IsSpace(r) {
			break
		}

		i += size
	}

	if i >= len(s.src) || s.src[i] != '/' {
		return false, nil
	}

	d, ok := s.match(i+1, '/')
	if !ok {
		return false, nil
	}

	open := -1
	for j := len(s.stack) - 1; j >= 0; j-- {
		if s.stack[j].directive == d {
			open = j

			break
		}
	}

	if open < 0 {
		return false, nil
	}

	if top := len(s.stack) - 1; open != top {
		inner := s.stack[top]

		return false, s.malformed(inner.directive,
			"closing /"+d.String()+" crosses open block", i)
	}

	tag := s.stack[open]
	s.stack = s.stack[:open]
	s.pos = i + 1 + len(d.String())

	if len(s.stack) == 0 {
		s.emit(Literal, s.lit, tag.offset)
		s.emit(d, tag.offset, s.pos)
		s.lit = s.pos
	}

	return true, nil
}

// match reports which block directive name begins at offset i. An opening
// tag additionally requires horizontal whitespace after the name.
func (s *scanner) match(i int, sigil byte) (Directive, bool) {
	for _, d := range blockDirectives {
		name := d.String()
		if !strings.HasPrefix(s.src[i:], name) {
			continue
		}

		if sigil == '/' {
			return d, true
		}

		if end := i + len(name); end < len(s.src) &&
			(s.src[end] == ' ' || s.src[end] == '\t') {
			return d, true
		}
	}

	return Literal, false
}

func (s *scanner) emit(d Directive, from, to int) {
	if from >= to {
		return
	}

	s.segs = append(s.segs, Segment{
		Directive: d,
		Text:      s.src[from:to],
		Pos:       positionOf(s.src, from),
	})
}

func (s *scanner) malformed(d Directive, reason string, off int) error {
	return ErrMalformedDirective.
		With(slog.String("directive", d.String()), slog.String("reason", reason)).
		WithPosition(positionOf(s.src, off))
}

// refs calls fn for each variable reference in text with the byte offsets of
// its "@" and the end of its path. A reference path runs up to whitespace or
// '<'; an "@" not followed by a path is literal.
func refs(text string, fn func(start, end int) error) error {
	for i := 0; i < len(text); {
		at := strings.IndexByte(text[i:], '@')
		if at < 0 {
			return nil
		}

		start := i + at
		end := start + 1

		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if r == '<' || unicode.IsSpace(r) {
				break
			}

			end += size
		}

		if end > start+1 {
			if err := fn(start, end); err != nil {
				return err
			}
		}

		i = end
	}

	return nil
}
