package tmpl

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// Placeholder tokens are delimited by two private-use runes and sealed with a
// nonce drawn per expansion, so template text cannot forge one.
const (
	tokenOpen  = "\uE000"
	tokenClose = "\uE001"
)

// marker builds and recognizes the placeholder tokens of one expansion.
// A token carries an opaque id instead of its binding key, so keys survive
// the HTML parser's entity decoding unchanged. Copies share one id table.
type marker struct {
	seal string
	ids  *idTable
}

func newMarker() marker {
	return marker{
		seal: tokenOpen + strconv.FormatUint(rand.Uint64(), 36) + ":",
		ids:  &idTable{byKey: map[string]string{}, byID: map[string]string{}},
	}
}

// idTable maps binding keys to token ids and back.
type idTable struct {
	mu    sync.Mutex
	byKey map[string]string
	byID  map[string]string
}

// id returns the id of key, assigning the next one if key is new.
func (t *idTable) id(key string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byKey[key]; ok {
		return id
	}

	id := strconv.FormatUint(uint64(len(t.byKey)), 36)
	t.byKey[key] = id
	t.byID[id] = key

	return id
}

// key returns the binding key of id. Unknown ids map to a key no binding
// can have, so a lookup reports it missing.
func (t *idTable) key(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if key, ok := t.byID[id]; ok {
		return key
	}

	return tokenOpen + id
}

// token returns the placeholder for key.
func (m marker) token(key string) string {
	return m.seal + m.ids.id(key) + tokenClose
}

// contains reports whether s holds at least one placeholder.
func (m marker) contains(s string) bool {
	return strings.Contains(s, m.seal)
}

// piece is a span of text between placeholders, or a placeholder's key.
type piece struct {
	text string
	key  string
}

// split breaks s into literal text and placeholder keys in order.
// Empty text pieces are omitted.
func (m marker) split(s string) []piece {
	var out []piece

	for {
		i := strings.Index(s, m.seal)
		if i < 0 {
			break
		}

		j := strings.Index(s[i+len(m.seal):], tokenClose)
		if j < 0 {
			break
		}

		if i > 0 {
			out = append(out, piece{text: s[:i]})
		}

		id := s[i+len(m.seal) : i+len(m.seal)+j]
		out = append(out, piece{key: m.ids.key(id)})
		s = s[i+len(m.seal)+j+len(tokenClose):]
	}

	if s != "" {
		out = append(out, piece{text: s})
	}

	return out
}

// replace substitutes text for the placeholder of key in s.
func (m marker) replace(s, key, text string) string {
	return strings.Replace(s, m.token(key), text, 1)
}
