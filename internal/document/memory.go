package document

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
)

type Highlight struct {
	Span  Span   `json:"span"`
	Color string `json:"color"`
}

// Memory is a Service over an in-process string body.
type Memory struct {
	mu         sync.Mutex
	body       []rune
	selection  Span
	highlights []Highlight
}

func NewMemory(body string) *Memory {
	return &Memory{body: []rune(body)}
}

// SetBody replaces the whole document and drops selection and highlights.
func (m *Memory) SetBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.body = []rune(body)
	m.selection = Span{}
	m.highlights = nil
}

// Select marks [start, end) as the user selection. An empty span clears it.
func (m *Memory) Select(span Span) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.inRange(span) {
		return fmt.Errorf("select %d..%d: %w", span.Start, span.End, ErrSpanOutOfRange)
	}
	m.selection = span
	return nil
}

// SelectText selects the first literal occurrence of text. It reports whether
// the text was found; when it was not, the selection is cleared.
func (m *Memory) SelectText(text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.selection = Span{}
	if text == "" {
		return false
	}
	idx := strings.Index(string(m.body), text)
	if idx < 0 {
		return false
	}
	start := len([]rune(string(m.body)[:idx]))
	m.selection = Span{Start: start, End: start + len([]rune(text))}
	return true
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.body)
}

func (m *Memory) Highlights() []Highlight {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Highlight, len(m.highlights))
	copy(out, m.highlights)
	return out
}

func (m *Memory) Selection(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selection.Len() <= 0 {
		return "", true, nil
	}
	return string(m.body[m.selection.Start:m.selection.End]), false, nil
}

func (m *Memory) Body(_ context.Context) (string, error) {
	return m.Text(), nil
}

func (m *Memory) Search(_ context.Context, text string, opts SearchOptions) ([]Span, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return search(m.body, []rune(text), opts), nil
}

func (m *Memory) SetHighlight(_ context.Context, span Span, color string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.inRange(span) {
		return fmt.Errorf("highlight %d..%d: %w", span.Start, span.End, ErrSpanOutOfRange)
	}

	m.highlights = carve(m.highlights, span)

	if color != "" {
		m.highlights = append(m.highlights, Highlight{Span: span, Color: color})
	}
	return nil
}

func (m *Memory) ReplaceSpan(_ context.Context, span Span, newText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.inRange(span) {
		return fmt.Errorf("replace %d..%d: %w", span.Start, span.End, ErrSpanOutOfRange)
	}

	replacement := []rune(newText)
	delta := len(replacement) - span.Len()

	body := make([]rune, 0, len(m.body)+delta)
	body = append(body, m.body[:span.Start]...)
	body = append(body, replacement...)
	body = append(body, m.body[span.End:]...)
	m.body = body

	// The rewritten range loses its colour; the rest of an overlapping
	// highlight survives on either side.
	kept := carve(m.highlights, span)
	for i := range kept {
		h := &kept[i]
		switch {
		case h.Span.Start >= span.End:
			h.Span.Start += delta
			h.Span.End += delta
		case h.Span.End > span.End:
			// Insertion strictly inside a highlight grows it.
			h.Span.End += delta
		}
	}
	m.highlights = kept

	m.selection = shiftSelection(m.selection, span, delta)
	return nil
}

func (m *Memory) ClearAllHighlights(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.highlights = nil
	return nil
}

// carve removes cut from every highlight, trimming or splitting the ones that
// overlap it. An empty cut removes nothing.
func carve(highlights []Highlight, cut Span) []Highlight {
	out := make([]Highlight, 0, len(highlights)+1)
	for _, h := range highlights {
		if cut.Len() == 0 || h.Span.End <= cut.Start || h.Span.Start >= cut.End {
			out = append(out, h)
			continue
		}
		if h.Span.Start < cut.Start {
			out = append(out, Highlight{Span: Span{Start: h.Span.Start, End: cut.Start}, Color: h.Color})
		}
		if h.Span.End > cut.End {
			out = append(out, Highlight{Span: Span{Start: cut.End, End: h.Span.End}, Color: h.Color})
		}
	}
	return out
}

func (m *Memory) inRange(span Span) bool {
	return span.Start >= 0 && span.Start <= span.End && span.End <= len(m.body)
}

func shiftSelection(sel, edited Span, delta int) Span {
	switch {
	case sel.Len() <= 0:
		return sel
	case sel.End <= edited.Start:
		return sel
	case sel.Start >= edited.End:
		return Span{Start: sel.Start + delta, End: sel.End + delta}
	default:
		end := sel.End + delta
		if end < sel.Start {
			end = sel.Start
		}
		return Span{Start: sel.Start, End: end}
	}
}

// search returns non-overlapping matches of query in body, left to right.
func search(body, query []rune, opts SearchOptions) []Span {
	if opts.IgnoreWhitespace {
		query = stripSpace(query)
	}
	if len(query) == 0 {
		return nil
	}

	eq := func(a, b rune) bool { return a == b }
	if !opts.CaseSensitive {
		folder := cases.Fold()
		eq = func(a, b rune) bool {
			return a == b || folder.String(string(a)) == folder.String(string(b))
		}
	}

	var spans []Span
	for i := 0; i < len(body); {
		end, ok := matchAt(body, query, i, opts.IgnoreWhitespace, eq)
		if ok && opts.WholeWord && !atWordBoundary(body, i, end) {
			ok = false
		}
		if !ok {
			i++
			continue
		}
		spans = append(spans, Span{Start: i, End: end})
		i = end
	}
	return spans
}

func matchAt(body, query []rune, start int, ignoreSpace bool, eq func(a, b rune) bool) (int, bool) {
	j := start
	for k, q := range query {
		if ignoreSpace && k > 0 {
			for j < len(body) && unicode.IsSpace(body[j]) {
				j++
			}
		}
		if j >= len(body) || !eq(body[j], q) {
			return 0, false
		}
		j++
	}
	return j, true
}

func atWordBoundary(body []rune, start, end int) bool {
	if start > 0 && isWordRune(body[start-1]) {
		return false
	}
	if end < len(body) && isWordRune(body[end]) {
		return false
	}
	return true
}

// isWordRune treats combining marks as word characters so Bengali vowel signs
// and the hasant never count as a boundary.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '_' ||
		r == '\u200c' || r == '\u200d'
}

func stripSpace(rs []rune) []rune {
	out := make([]rune, 0, len(rs))
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			out = append(out, r)
		}
	}
	return out
}
