// Package signals scores document text for eligibility-relevant language.
//
// Five keyword categories are counted: uncertainty, systematic investigation,
// failure, advancement and disqualifying routine work. The resulting score is
// a textual proxy for tax-credit eligibility and is capped unless both
// uncertainty and systematic evidence are present.
package signals

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

// Score weights. These are fixed contracts; recalibration needs separate review.
const (
	weightUncertainty = 3.0
	weightSystematic  = 2.0
	weightFailure     = 2.5
	weightAdvancement = 2.0
	weightRoutine     = 3.0

	lengthUnit     = 1000.0
	scoreDivisor   = 5.0
	unsupportedCap = 0.5
)

// MaxEvidencePhrases bounds the distinct phrases kept per category.
const MaxEvidencePhrases = 10

// Detector counts signal phrases in text.
type Detector struct {
	categories []category
}

// NewDetector returns a detector backed by the shared compiled tables.
func NewDetector() *Detector {
	return &Detector{categories: categories}
}

// Detect returns the signal profile of text. It never panics; blank text
// yields the zero profile.
func (d *Detector) Detect(text string) domain.SignalProfile {
	if strings.TrimSpace(text) == "" {
		return domain.SignalProfile{}
	}

	profile := domain.SignalProfile{Evidence: make(map[string][]string)}

	for _, c := range d.categories {
		matches := c.pattern.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}

		setCount(&profile, c.name, len(matches))
		profile.Evidence[c.name] = distinctPhrases(matches, MaxEvidencePhrases)
	}

	if len(profile.Evidence) == 0 {
		profile.Evidence = nil
	}

	profile.Score = Score(Totals(profile), float64(utf8.RuneCountInString(text))/lengthUnit)

	return profile
}

// Totals converts a profile to signal totals.
func Totals(p domain.SignalProfile) domain.SignalTotals {
	return domain.SignalTotals{
		Uncertainty: p.UncertaintyCount,
		Systematic:  p.SystematicCount,
		Failure:     p.FailureCount,
		Advancement: p.AdvancementCount,
		Routine:     p.RoutineCount,
	}
}

// Score applies the weighted formula to counts, normalised by divisor
// (text length in thousands of characters for a document, document count
// for a cluster). The result is capped at 0.5 unless both uncertainty and
// systematic evidence are present.
func Score(t domain.SignalTotals, divisor float64) float64 {
	raw := weightUncertainty*float64(t.Uncertainty) +
		weightSystematic*float64(t.Systematic) +
		weightFailure*float64(t.Failure) +
		weightAdvancement*float64(t.Advancement) -
		weightRoutine*float64(t.Routine)

	score := Clamp01(raw / math.Max(divisor, 1) / scoreDivisor)

	if t.Uncertainty < 1 || t.Systematic < 1 {
		score = math.Min(score, unsupportedCap)
	}

	return score
}

// Clamp01 bounds v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}

func setCount(p *domain.SignalProfile, name string, n int) {
	switch name {
	case domain.CategoryUncertainty:
		p.UncertaintyCount = n
	case domain.CategorySystematic:
		p.SystematicCount = n
	case domain.CategoryFailure:
		p.FailureCount = n
	case domain.CategoryAdvancement:
		p.AdvancementCount = n
	case domain.CategoryRoutine:
		p.RoutineCount = n
	}
}

func distinctPhrases(matches []string, limit int) []string {
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, min(len(matches), limit))

	for _, m := range matches {
		phrase := strings.ToLower(strings.Join(strings.Fields(m), " "))
		if seen[phrase] {
			continue
		}

		seen[phrase] = true
		out = append(out, phrase)

		if len(out) == limit {
			break
		}
	}

	return out
}
