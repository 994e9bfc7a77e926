package signals

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

func TestDetect_BlankText(t *testing.T) {
	d := NewDetector()

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		p := d.Detect(text)
		assert.Equal(t, domain.SignalProfile{}, p, "text %q", text)
	}
}

func TestDetect_CountsDuplicates(t *testing.T) {
	d := NewDetector()

	p := d.Detect("We were uncertain. Still uncertain after the experiment. Another experiment failed.")

	assert.Equal(t, 2, p.UncertaintyCount)
	assert.Equal(t, 2, p.SystematicCount)
	assert.Equal(t, 1, p.FailureCount)
	assert.Equal(t, []string{"uncertain"}, p.Evidence[domain.CategoryUncertainty])
	assert.Equal(t, []string{"experiment"}, p.Evidence[domain.CategorySystematic])
}

func TestDetect_CaseInsensitiveAndWhitespace(t *testing.T) {
	d := NewDetector()

	p := d.Detect("The team was UNABLE TO\nPREDICT the outcome")

	assert.Equal(t, 1, p.UncertaintyCount)
	assert.Equal(t, []string{"unable to predict"}, p.Evidence[domain.CategoryUncertainty])
}

func TestDetect_EvidenceCapped(t *testing.T) {
	d := NewDetector()

	text := strings.Join(systematicPhrases, ". ")
	p := d.Detect(text)

	assert.GreaterOrEqual(t, p.SystematicCount, len(systematicPhrases))
	assert.Len(t, p.Evidence[domain.CategorySystematic], MaxEvidencePhrases)
}

func TestDetect_ScoreCappedWithoutUncertainty(t *testing.T) {
	d := NewDetector()

	text := strings.Repeat("We achieved a breakthrough after the experiment and benchmark. ", 10)
	p := d.Detect(text)

	require.Zero(t, p.UncertaintyCount)
	assert.Greater(t, p.AdvancementCount, 0)
	assert.LessOrEqual(t, p.Score, 0.5)
}

func TestDetect_ScoreCappedWithoutSystematic(t *testing.T) {
	d := NewDetector()

	p := d.Detect("Uncertain. Unknown. Unclear. Achieved. Breakthrough. Novel.")

	require.Zero(t, p.SystematicCount)
	assert.Equal(t, 0.5, p.Score)
}

func TestDetect_FullEvidenceCanExceedCap(t *testing.T) {
	d := NewDetector()

	p := d.Detect("Technological uncertainty remained, so we formed a hypothesis and ran an experiment. The prototype failed, then we achieved a breakthrough.")

	assert.Greater(t, p.Score, 0.5)
	assert.LessOrEqual(t, p.Score, 1.0)
}

func TestDetect_RoutineLowersScore(t *testing.T) {
	d := NewDetector()

	base := d.Detect("uncertain hypothesis experiment")
	withRoutine := d.Detect("uncertain hypothesis experiment routine maintenance data entry")

	assert.Less(t, withRoutine.Score, base.Score)
	assert.Equal(t, 2, withRoutine.RoutineCount)
}

func TestDetect_ScoreAlwaysInRange(t *testing.T) {
	d := NewDetector()

	inputs := []string{
		"routine routine routine maintenance",
		strings.Repeat("uncertain experiment failed achieved ", 500),
		"\x00\xff invalid utf8 \xfe",
		strings.Repeat("a", 200000),
		"🙂 unknown 🙂 tested",
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			p := d.Detect(in)
			assert.GreaterOrEqual(t, p.Score, 0.0)
			assert.LessOrEqual(t, p.Score, 1.0)
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		totals  domain.SignalTotals
		divisor float64
		want    float64
	}{
		{name: "zero", totals: domain.SignalTotals{}, divisor: 1, want: 0},
		{name: "one of each supported", totals: domain.SignalTotals{Uncertainty: 1, Systematic: 1}, divisor: 1, want: 1.0},
		{name: "divisor below one is ignored", totals: domain.SignalTotals{Uncertainty: 1, Systematic: 1}, divisor: 0.2, want: 1.0},
		{name: "length normalisation", totals: domain.SignalTotals{Uncertainty: 1, Systematic: 1}, divisor: 2, want: 0.5},
		{name: "advancement only capped", totals: domain.SignalTotals{Advancement: 10}, divisor: 1, want: 0.5},
		{name: "routine clamps to zero", totals: domain.SignalTotals{Uncertainty: 1, Systematic: 1, Routine: 5}, divisor: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.totals, tt.divisor), 1e-9)
		})
	}
}
