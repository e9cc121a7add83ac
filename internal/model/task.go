package model

import (
	"fmt"
	"math"
	"strings"
)

type Tone string

const (
	ToneNone         Tone = ""
	ToneFormal       Tone = "formal"
	ToneInformal     Tone = "informal"
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneRespectful   Tone = "respectful"
	TonePersuasive   Tone = "persuasive"
	ToneNeutral      Tone = "neutral"
	ToneAcademic     Tone = "academic"
)

var Tones = []Tone{
	ToneFormal,
	ToneInformal,
	ToneProfessional,
	ToneFriendly,
	ToneRespectful,
	TonePersuasive,
	ToneNeutral,
	ToneAcademic,
}

func (t Tone) Valid() bool {
	if t == ToneNone {
		return true
	}
	for _, v := range Tones {
		if v == t {
			return true
		}
	}
	return false
}

// Register is the Bengali prose convention a style pass converts towards.
type Register string

const (
	RegisterNone    Register = "none"
	RegisterSadhu   Register = "sadhu"   // archaic/formal register
	RegisterCholito Register = "cholito" // colloquial register
)

var Registers = []Register{RegisterNone, RegisterSadhu, RegisterCholito}

func (r Register) Valid() bool {
	for _, v := range Registers {
		if v == r {
			return true
		}
	}
	return false
}

// TaskConfig carries the user's category selections for one run.
type TaskConfig struct {
	Tone     Tone     `json:"tone"`
	Register Register `json:"register"`
}

// Normalize lower-cases the selections and maps an empty register to none.
func (t TaskConfig) Normalize() TaskConfig {
	t.Tone = Tone(strings.ToLower(strings.TrimSpace(string(t.Tone))))
	t.Register = Register(strings.ToLower(strings.TrimSpace(string(t.Register))))
	if t.Register == "" {
		t.Register = RegisterNone
	}
	return t
}

func (t TaskConfig) Validate() error {
	if !t.Tone.Valid() {
		return fmt.Errorf("unknown tone %q", t.Tone)
	}
	if !t.Register.Valid() {
		return fmt.Errorf("unknown register %q", t.Register)
	}
	return nil
}

func (t TaskConfig) ToneEnabled() bool {
	return t.Tone != ToneNone
}

func (t TaskConfig) StyleEnabled() bool {
	return t.Register != RegisterNone
}

// Stats are derived after the correctness pass.
type Stats struct {
	TotalWords int `json:"total_words"`
	ErrorCount int `json:"error_count"`
	Accuracy   int `json:"accuracy"`
}

// ComputeStats counts whitespace-delimited tokens of text and derives accuracy
// from the number of spelling errors.
func ComputeStats(text string, errorCount int) Stats {
	words := len(strings.Fields(text))
	accuracy := 100
	if words > 0 {
		accuracy = int(math.Round(100 * float64(words-errorCount) / float64(words)))
	}
	return Stats{
		TotalWords: words,
		ErrorCount: errorCount,
		Accuracy:   accuracy,
	}
}
