package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/youngsunson/updatev2/internal/model"
	"github.com/youngsunson/updatev2/internal/proofread"
)

var categoryColors = map[model.Category]*color.Color{
	model.CategorySpelling:       color.New(color.FgRed, color.Bold),
	model.CategoryTone:           color.New(color.FgYellow, color.Bold),
	model.CategoryStyle:          color.New(color.FgCyan, color.Bold),
	model.CategoryRegisterMixing: color.New(color.FgMagenta, color.Bold),
	model.CategoryPunctuation:    color.New(color.FgHiRed, color.Bold),
	model.CategoryEuphony:        color.New(color.FgHiMagenta, color.Bold),
	model.CategoryContent:        color.New(color.FgBlue, color.Bold),
}

var categoryTitles = map[model.Category]string{
	model.CategorySpelling:       "Spelling",
	model.CategoryTone:           "Tone",
	model.CategoryStyle:          "Register conversion",
	model.CategoryRegisterMixing: "Register mixing",
	model.CategoryPunctuation:    "Punctuation",
	model.CategoryEuphony:        "Euphony",
	model.CategoryContent:        "Content",
}

func header(w io.Writer, c model.Category, n int) {
	categoryColors[c].Fprintf(w, "\n%s (%d)\n", categoryTitles[c], n)
}

func render(w io.Writer, r *proofread.RunResult) {
	s := r.Suggestions
	faint := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(w, "words %d  errors %d  accuracy %d%%  [%s]\n",
		r.Stats.TotalWords, r.Stats.ErrorCount, r.Stats.Accuracy, r.Status)
	for _, st := range r.Stages {
		if st.Status == model.StageDegraded || st.Status == model.StageFailed {
			color.New(color.FgYellow).Fprintf(w, "%s: %s (%s)\n", st.Stage, st.Status, st.Error)
		}
	}

	if len(s.Spelling) > 0 {
		header(w, model.CategorySpelling, len(s.Spelling))
		for _, c := range s.Spelling {
			fmt.Fprintf(w, "  %s → %s\n", c.SubjectText, strings.Join(c.Candidates, ", "))
		}
	}

	if s.RegisterMixing != nil && len(s.RegisterMixing.Items) > 0 {
		header(w, model.CategoryRegisterMixing, len(s.RegisterMixing.Items))
		if s.RegisterMixing.RecommendedRegister != "" {
			fmt.Fprintf(w, "  %s %s\n", faint("recommended:"), s.RegisterMixing.RecommendedRegister)
		}
		for _, it := range s.RegisterMixing.Items {
			fmt.Fprintf(w, "  %s → %s %s\n", it.SubjectText, it.Candidate, faint(it.Category))
		}
	}

	if len(s.Punctuation) > 0 {
		header(w, model.CategoryPunctuation, len(s.Punctuation))
		for _, p := range s.Punctuation {
			fmt.Fprintf(w, "  %s\n    %s\n    %s\n", p.Description, p.SubjectSentence, p.CorrectedSentence)
		}
	}

	if len(s.Euphony) > 0 {
		header(w, model.CategoryEuphony, len(s.Euphony))
		for _, e := range s.Euphony {
			fmt.Fprintf(w, "  %s → %s\n", e.SubjectText, strings.Join(e.Candidates, ", "))
		}
	}

	if len(s.Tone) > 0 {
		header(w, model.CategoryTone, len(s.Tone))
		for _, t := range s.Tone {
			fmt.Fprintf(w, "  %s → %s %s\n", t.SubjectText, t.Candidate, faint(t.Rationale))
		}
	}

	if len(s.Style) > 0 {
		header(w, model.CategoryStyle, len(s.Style))
		for _, t := range s.Style {
			fmt.Fprintf(w, "  %s → %s %s\n", t.SubjectText, t.Candidate, faint(t.Category))
		}
	}

	if s.Content != nil {
		categoryColors[model.CategoryContent].Fprintf(w, "\n%s\n", categoryTitles[model.CategoryContent])
		fmt.Fprintf(w, "  %s\n", s.Content.ContentType)
		if s.Content.Description != "" {
			fmt.Fprintf(w, "  %s\n", s.Content.Description)
		}
		for _, m := range s.Content.MissingElements {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		for _, sug := range s.Content.Suggestions {
			fmt.Fprintf(w, "  + %s\n", sug)
		}
	}

	if s.Pending() == 0 {
		color.New(color.FgGreen).Fprintln(w, "\nNo issues found.")
	}
}
