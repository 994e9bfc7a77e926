// Package assembly turns a group of documents into a scored project candidate.
package assembly

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/process/names"
	"github.com/lueurxax/sred-discovery/internal/process/signals"
)

// Cluster-level eligibility bar: below these totals the score is halved.
const (
	minClusterUncertainty = 3
	minClusterSystematic  = 5
	weakEvidenceFactor    = 0.5
)

// Confidence blend.
const (
	weightSize        = 0.3
	weightSpan        = 0.2
	weightTeam        = 0.2
	weightEligibility = 0.3

	sizeMidpoint  = 8.0
	sizeSlope     = 3.0
	spanIdealMin  = 30.0
	spanIdealMax  = 365.0
	spanFloor     = 0.3
	teamSaturates = 5.0
	hoursPerDay   = 24
)

// Assembler builds project candidates. It holds no per-call state.
type Assembler struct {
	normalizer *names.Normalizer
	logger     *zerolog.Logger
}

// NewAssembler creates an assembler. A nil normalizer gets the default one.
func NewAssembler(normalizer *names.Normalizer, logger *zerolog.Logger) *Assembler {
	if normalizer == nil {
		normalizer = names.NewNormalizer()
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Assembler{normalizer: normalizer, logger: logger}
}

// Assemble builds a candidate from docs and names it from their content.
func (a *Assembler) Assemble(docs []domain.Document, source domain.DiscoverySource) domain.ProjectCandidate {
	sorted := sortedByID(docs)
	c := a.build(sorted, source)
	c.CanonicalName, c.NameVariations, c.GenericName = a.chooseName(sorted)

	return c
}

// AssembleNamed builds a candidate whose name comes from a name group.
func (a *Assembler) AssembleNamed(docs []domain.Document, group names.NameGroup, source domain.DiscoverySource) domain.ProjectCandidate {
	c := a.build(sortedByID(docs), source)
	c.CanonicalName = group.Canonical

	for _, v := range group.Variations {
		if v != group.Canonical {
			c.NameVariations = append(c.NameVariations, v)
		}
	}

	return c
}

func (a *Assembler) build(docs []domain.Document, source domain.DiscoverySource) domain.ProjectCandidate {
	c := domain.ProjectCandidate{
		ID:              uuid.NewString(),
		DocumentIDs:     make([]string, 0, len(docs)),
		DiscoverySource: source,
	}

	tally := NewTally()

	for _, doc := range docs {
		c.DocumentIDs = append(c.DocumentIDs, doc.ID)
		tally.AddDocument(doc)

		if doc.Signals != nil {
			c.Signals.Add(signals.Totals(*doc.Signals))
			c.Evidence = domain.MergeEvidence(c.Evidence, doc.Signals.Evidence, signals.MaxEvidencePhrases)
		}
	}

	c.Contributors = tally.Ranked()
	c.StartDate, c.EndDate = projectDates(docs)
	c.EligibilityScore = ClusterEligibility(c.Signals, len(docs))
	c.Confidence = Confidence(len(docs), c.StartDate, c.EndDate, tally.Len(), c.EligibilityScore)
	c.Summary = c.Describe()

	a.logger.Debug().
		Str("candidate_id", c.ID).
		Int("documents", len(docs)).
		Float64("eligibility", c.EligibilityScore).
		Float64("confidence", c.Confidence).
		Msg("assembled candidate")

	return c
}

// ClusterEligibility applies the signal formula renormalised by document
// count and halves it when the group lacks enough uncertainty or
// systematic evidence.
func ClusterEligibility(totals domain.SignalTotals, docCount int) float64 {
	score := signals.Score(totals, float64(docCount))

	if totals.Uncertainty < minClusterUncertainty || totals.Systematic < minClusterSystematic {
		score *= weakEvidenceFactor
	}

	return score
}

// Confidence blends group size, date span, team size and eligibility.
func Confidence(docCount int, start, end *time.Time, teamSize int, eligibility float64) float64 {
	size := 1 / (1 + math.Exp(-(float64(docCount)-sizeMidpoint)/sizeSlope))
	team := math.Min(float64(teamSize)/teamSaturates, 1)

	return signals.Clamp01(weightSize*size + weightSpan*spanScore(start, end) + weightTeam*team + weightEligibility*eligibility)
}

func spanScore(start, end *time.Time) float64 {
	if start == nil || end == nil {
		return 0
	}

	days := end.Sub(*start).Hours() / hoursPerDay

	switch {
	case days < 0:
		return 0
	case days < spanIdealMin:
		return days / spanIdealMin
	case days <= spanIdealMax:
		return 1
	default:
		return math.Max(spanFloor, spanIdealMax/days)
	}
}

// projectDates picks the first recorded uncertainty and the last recorded
// resolution, falling back to the overall date range. An end before the
// start falls back to the overall latest date.
func projectDates(docs []domain.Document) (*time.Time, *time.Time) {
	var first, last, start, end *time.Time

	for i := range docs {
		d := docs[i].EffectiveDate()
		if d == nil {
			continue
		}

		first = earlier(first, d)
		last = later(last, d)

		if docs[i].Signals.HasUncertainty() {
			start = earlier(start, d)
		}

		if docs[i].Signals.HasResolution() {
			end = later(end, d)
		}
	}

	if start == nil {
		start = first
	}

	if end == nil || (start != nil && end.Before(*start)) {
		end = last
	}

	return start, end
}

func earlier(a, b *time.Time) *time.Time {
	if a == nil || b.Before(*a) {
		return b
	}

	return a
}

func later(a, b *time.Time) *time.Time {
	if a == nil || b.After(*a) {
		return b
	}

	return a
}

func sortedByID(docs []domain.Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	copy(out, docs)

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
