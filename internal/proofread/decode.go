package proofread

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/internal/model"
)

// Wire shapes the Analysis Service is asked to return. Field names follow the
// prompts; they are mapped onto model types before anything else sees them.

type correctnessPayload struct {
	SpellingErrors      []spellingWire `json:"spellingErrors" jsonschema:"description=Misspelled words copied verbatim from the input"`
	LanguageStyleMixing *mixingWire    `json:"languageStyleMixing,omitempty"`
	PunctuationIssues   []punctWire    `json:"punctuationIssues"`
	EuphonyImprovements []euphonyWire  `json:"euphonyImprovements"`
}

type spellingWire struct {
	Wrong       string   `json:"wrong"`
	Suggestions []string `json:"suggestions"`
	Position    *int     `json:"position,omitempty"`
}

type mixingWire struct {
	Detected         bool                `json:"detected"`
	RecommendedStyle string              `json:"recommendedStyle,omitempty"`
	Reason           string              `json:"reason,omitempty"`
	Corrections      []mixingCorrectWire `json:"corrections,omitempty"`
}

type mixingCorrectWire struct {
	Current    string `json:"current"`
	Suggestion string `json:"suggestion"`
	Type       string `json:"type,omitempty"`
}

type punctWire struct {
	Issue             string `json:"issue"`
	CurrentSentence   string `json:"currentSentence"`
	CorrectedSentence string `json:"correctedSentence"`
	Explanation       string `json:"explanation,omitempty"`
}

type euphonyWire struct {
	Current     string   `json:"current"`
	Suggestions []string `json:"suggestions"`
	Reason      string   `json:"reason,omitempty"`
}

type tonePayload struct {
	ToneConversions []toneWire `json:"toneConversions"`
}

type toneWire struct {
	Current    string `json:"current"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason,omitempty"`
}

type stylePayload struct {
	StyleConversions []styleWire `json:"styleConversions"`
}

type styleWire struct {
	Current    string `json:"current"`
	Suggestion string `json:"suggestion"`
	Type       string `json:"type,omitempty"`
}

type contentPayload struct {
	ContentType     string   `json:"contentType"`
	Description     string   `json:"description,omitempty"`
	MissingElements []string `json:"missingElements,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

var (
	correctnessSchema = llm.GenerateSchema[correctnessPayload]()
	toneSchema        = llm.GenerateSchema[tonePayload]()
	styleSchema       = llm.GenerateSchema[stylePayload]()
	contentSchema     = llm.GenerateSchema[contentPayload]()
)

// ExtractObject locates the first top-level JSON object in raw, tolerating
// markdown fences and prose around it. Braces inside string literals are
// ignored. When no object closes, it falls back to the span between the first
// '{' and the last '}'.
func ExtractObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	end := strings.LastIndexByte(raw, '}')
	if end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func decodePayload[T any](raw string) (*T, error) {
	obj, ok := ExtractObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrDecode)
	}

	var v T
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &v, nil
}

func decodeCorrectness(raw string) (*model.CorrectnessBatch, error) {
	p, err := decodePayload[correctnessPayload](raw)
	if err != nil {
		return nil, err
	}

	batch := &model.CorrectnessBatch{
		Spelling:    make([]model.SpellingCorrection, 0, len(p.SpellingErrors)),
		Punctuation: make([]model.PunctuationIssue, 0, len(p.PunctuationIssues)),
		Euphony:     make([]model.EuphonyImprovement, 0, len(p.EuphonyImprovements)),
	}
	for _, s := range p.SpellingErrors {
		batch.Spelling = append(batch.Spelling, model.SpellingCorrection{
			SubjectText:  s.Wrong,
			Candidates:   nonNil(s.Suggestions),
			PositionHint: s.Position,
		})
	}
	for _, pi := range p.PunctuationIssues {
		batch.Punctuation = append(batch.Punctuation, model.PunctuationIssue{
			Description:       pi.Issue,
			SubjectSentence:   pi.CurrentSentence,
			CorrectedSentence: pi.CorrectedSentence,
			Explanation:       pi.Explanation,
		})
	}
	for _, e := range p.EuphonyImprovements {
		batch.Euphony = append(batch.Euphony, model.EuphonyImprovement{
			SubjectText: e.Current,
			Candidates:  nonNil(e.Suggestions),
			Rationale:   e.Reason,
		})
	}

	if m := p.LanguageStyleMixing; m != nil {
		report := &model.RegisterMixingReport{
			Detected:            m.Detected,
			RecommendedRegister: m.RecommendedStyle,
			Rationale:           m.Reason,
		}
		for _, c := range m.Corrections {
			report.Items = append(report.Items, model.RegisterMixingItem{
				SubjectText: c.Current,
				Candidate:   c.Suggestion,
				Category:    c.Type,
			})
		}
		batch.RegisterMixing = report
	}

	return batch, nil
}

func decodeTone(raw string) ([]model.ToneSuggestion, error) {
	p, err := decodePayload[tonePayload](raw)
	if err != nil {
		return nil, err
	}
	out := make([]model.ToneSuggestion, 0, len(p.ToneConversions))
	for _, t := range p.ToneConversions {
		out = append(out, model.ToneSuggestion{
			SubjectText: t.Current,
			Candidate:   t.Suggestion,
			Rationale:   t.Reason,
		})
	}
	return out, nil
}

func decodeStyle(raw string) ([]model.StyleSuggestion, error) {
	p, err := decodePayload[stylePayload](raw)
	if err != nil {
		return nil, err
	}
	out := make([]model.StyleSuggestion, 0, len(p.StyleConversions))
	for _, s := range p.StyleConversions {
		out = append(out, model.StyleSuggestion{
			SubjectText: s.Current,
			Candidate:   s.Suggestion,
			Category:    s.Type,
		})
	}
	return out, nil
}

func decodeContent(raw string) (*model.ContentAnalysis, error) {
	p, err := decodePayload[contentPayload](raw)
	if err != nil {
		return nil, err
	}
	return &model.ContentAnalysis{
		ContentType:     p.ContentType,
		Description:     p.Description,
		MissingElements: p.MissingElements,
		Suggestions:     p.Suggestions,
	}, nil
}
