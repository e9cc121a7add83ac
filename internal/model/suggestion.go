package model

import "strings"

// Category identifies one suggestion kind.
type Category string

const (
	CategorySpelling       Category = "spelling"
	CategoryTone           Category = "tone"
	CategoryStyle          Category = "style"
	CategoryRegisterMixing Category = "mixing"
	CategoryPunctuation    Category = "punct"
	CategoryEuphony        Category = "euphony"
	CategoryContent        Category = "content"
)

// Categories lists the dismissable categories in display order.
var Categories = []Category{
	CategorySpelling,
	CategoryTone,
	CategoryStyle,
	CategoryRegisterMixing,
	CategoryPunctuation,
	CategoryEuphony,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// HighlightColor is the document highlight used for the category's subject spans.
func (c Category) HighlightColor() string {
	switch c {
	case CategorySpelling:
		return "#fee2e2"
	case CategoryTone:
		return "#fef3c7"
	case CategoryStyle:
		return "#ccfbf1"
	case CategoryRegisterMixing:
		return "#ede9fe"
	case CategoryPunctuation:
		return "#ffedd5"
	case CategoryEuphony:
		return "#fce7f3"
	default:
		return ""
	}
}

type SpellingCorrection struct {
	SubjectText  string   `json:"subject_text"`
	Candidates   []string `json:"candidates"`
	PositionHint *int     `json:"position_hint,omitempty"`
}

type ToneSuggestion struct {
	SubjectText string `json:"subject_text"`
	Candidate   string `json:"candidate"`
	Rationale   string `json:"rationale"`
}

type StyleSuggestion struct {
	SubjectText string `json:"subject_text"`
	Candidate   string `json:"candidate"`
	Category    string `json:"category"`
}

type RegisterMixingItem struct {
	SubjectText string `json:"subject_text"`
	Candidate   string `json:"candidate"`
	Category    string `json:"category"`
}

// RegisterMixingReport is a singleton; a report whose items are purged away
// is dropped entirely by the store.
type RegisterMixingReport struct {
	Detected            bool                 `json:"detected"`
	RecommendedRegister string               `json:"recommended_register,omitempty"`
	Rationale           string               `json:"rationale,omitempty"`
	Items               []RegisterMixingItem `json:"items,omitempty"`
}

type PunctuationIssue struct {
	Description       string `json:"description"`
	SubjectSentence   string `json:"subject_sentence"`
	CorrectedSentence string `json:"corrected_sentence"`
	Explanation       string `json:"explanation"`
}

type EuphonyImprovement struct {
	SubjectText string   `json:"subject_text"`
	Candidates  []string `json:"candidates"`
	Rationale   string   `json:"rationale"`
}

// ContentAnalysis is informational only and never touches the document.
type ContentAnalysis struct {
	ContentType     string   `json:"content_type"`
	Description     string   `json:"description,omitempty"`
	MissingElements []string `json:"missing_elements,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// CorrectnessBatch is everything the mandatory correctness pass returns.
type CorrectnessBatch struct {
	Spelling       []SpellingCorrection
	RegisterMixing *RegisterMixingReport
	Punctuation    []PunctuationIssue
	Euphony        []EuphonyImprovement
}

// SameSubject reports whether subject denotes the same text as target once both
// are trimmed. It is the single matching rule for purge and dismiss.
func SameSubject(subject, target string) bool {
	return strings.TrimSpace(subject) == strings.TrimSpace(target)
}
