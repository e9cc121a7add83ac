package proofread

import (
	"fmt"
	"sync"

	"github.com/youngsunson/updatev2/internal/model"
)

// Snapshot is a point-in-time copy of the pending suggestions.
type Snapshot struct {
	Spelling       []model.SpellingCorrection  `json:"spelling"`
	Tone           []model.ToneSuggestion      `json:"tone"`
	Style          []model.StyleSuggestion     `json:"style"`
	RegisterMixing *model.RegisterMixingReport `json:"register_mixing,omitempty"`
	Punctuation    []model.PunctuationIssue    `json:"punctuation"`
	Euphony        []model.EuphonyImprovement  `json:"euphony"`
	Content        *model.ContentAnalysis      `json:"content,omitempty"`
}

// Pending counts suggestions that can still be accepted or dismissed.
func (s Snapshot) Pending() int {
	n := len(s.Spelling) + len(s.Tone) + len(s.Style) + len(s.Punctuation) + len(s.Euphony)
	if s.RegisterMixing != nil {
		n += len(s.RegisterMixing.Items)
	}
	return n
}

// Store holds the pending suggestions of the current run. Entries are purged
// reactively when their subject text is edited or dismissed; they are never
// re-verified against the live document.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewStore() *Store {
	return &Store{snap: emptySnapshot()}
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Spelling:    []model.SpellingCorrection{},
		Tone:        []model.ToneSuggestion{},
		Style:       []model.StyleSuggestion{},
		Punctuation: []model.PunctuationIssue{},
		Euphony:     []model.EuphonyImprovement{},
	}
}

// Reset clears every category and both singleton reports.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = emptySnapshot()
}

// ApplyCorrectness replaces the categories produced by the correctness pass.
func (s *Store) ApplyCorrectness(batch model.CorrectnessBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Spelling = nonNil(batch.Spelling)
	s.snap.RegisterMixing = cloneReport(batch.RegisterMixing)
	s.snap.Punctuation = nonNil(batch.Punctuation)
	s.snap.Euphony = nonNil(batch.Euphony)
}

func (s *Store) SetTone(batch []model.ToneSuggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Tone = nonNil(batch)
}

func (s *Store) SetStyle(batch []model.StyleSuggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Style = nonNil(batch)
}

func (s *Store) SetContent(content *model.ContentAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if content == nil {
		s.snap.Content = nil
		return
	}
	c := *content
	s.snap.Content = &c
}

// Purge removes, across every category and the register-mixing items, each
// entry whose subject equals text after trimming. It returns how many entries
// were removed.
func (s *Store) Purge(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, c := range model.Categories {
		removed += s.purgeLocked(c, text)
	}
	return removed
}

// Dismiss removes matching entries from one category only. Dismissing text
// that is not pending is a no-op.
func (s *Store) Dismiss(category model.Category, text string) (int, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeLocked(category, text), nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Snapshot{
		Spelling:       append([]model.SpellingCorrection{}, s.snap.Spelling...),
		Tone:           append([]model.ToneSuggestion{}, s.snap.Tone...),
		Style:          append([]model.StyleSuggestion{}, s.snap.Style...),
		RegisterMixing: cloneReport(s.snap.RegisterMixing),
		Punctuation:    append([]model.PunctuationIssue{}, s.snap.Punctuation...),
		Euphony:        append([]model.EuphonyImprovement{}, s.snap.Euphony...),
	}
	if s.snap.Content != nil {
		c := *s.snap.Content
		out.Content = &c
	}
	return out
}

func (s *Store) purgeLocked(category model.Category, text string) int {
	var removed int
	switch category {
	case model.CategorySpelling:
		s.snap.Spelling, removed = without(s.snap.Spelling, text, func(e model.SpellingCorrection) string { return e.SubjectText })
	case model.CategoryTone:
		s.snap.Tone, removed = without(s.snap.Tone, text, func(e model.ToneSuggestion) string { return e.SubjectText })
	case model.CategoryStyle:
		s.snap.Style, removed = without(s.snap.Style, text, func(e model.StyleSuggestion) string { return e.SubjectText })
	case model.CategoryPunctuation:
		s.snap.Punctuation, removed = without(s.snap.Punctuation, text, func(e model.PunctuationIssue) string { return e.SubjectSentence })
	case model.CategoryEuphony:
		s.snap.Euphony, removed = without(s.snap.Euphony, text, func(e model.EuphonyImprovement) string { return e.SubjectText })
	case model.CategoryRegisterMixing:
		report := s.snap.RegisterMixing
		if report == nil || len(report.Items) == 0 {
			return 0
		}
		var items []model.RegisterMixingItem
		items, removed = without(report.Items, text, func(e model.RegisterMixingItem) string { return e.SubjectText })
		if len(items) == 0 {
			s.snap.RegisterMixing = nil
			return removed
		}
		next := *report
		next.Items = items
		s.snap.RegisterMixing = &next
	}
	return removed
}

// without returns entries whose subject does not match text, allocating a new
// slice so earlier snapshots stay untouched.
func without[T any](entries []T, text string, subject func(T) string) ([]T, int) {
	kept := make([]T, 0, len(entries))
	for _, e := range entries {
		if !model.SameSubject(subject(e), text) {
			kept = append(kept, e)
		}
	}
	return kept, len(entries) - len(kept)
}

func nonNil[T any](entries []T) []T {
	if entries == nil {
		return []T{}
	}
	return append([]T{}, entries...)
}

func cloneReport(r *model.RegisterMixingReport) *model.RegisterMixingReport {
	if r == nil {
		return nil
	}
	c := *r
	c.Items = append([]model.RegisterMixingItem(nil), r.Items...)
	return &c
}
