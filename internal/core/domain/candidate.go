package domain

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// DiscoverySource tags how a candidate was found.
type DiscoverySource string

// Discovery sources.
const (
	SourceSignal     DiscoverySource = "sred_signal"
	SourceNameBased  DiscoverySource = "name_based"
	SourceClustering DiscoverySource = "clustering"
)

// Precedence ranks sources when merging duplicates. Explicit naming wins
// over signal-driven clustering, which wins over generic clustering.
func (s DiscoverySource) Precedence() int {
	switch s {
	case SourceNameBased:
		return 3
	case SourceSignal:
		return 2
	case SourceClustering:
		return 1
	default:
		return 0
	}
}

// RankedContributor is a contributor with an aggregated relevance score.
type RankedContributor struct {
	Contributor
	Score         float64 `json:"score"`
	DocumentCount int     `json:"document_count"`
}

// SignalTotals sums signal counts over a group of documents.
type SignalTotals struct {
	Uncertainty int `json:"uncertainty"`
	Systematic  int `json:"systematic"`
	Failure     int `json:"failure"`
	Advancement int `json:"advancement"`
	Routine     int `json:"routine"`
}

// Add accumulates another set of totals.
func (t *SignalTotals) Add(other SignalTotals) {
	t.Uncertainty += other.Uncertainty
	t.Systematic += other.Systematic
	t.Failure += other.Failure
	t.Advancement += other.Advancement
	t.Routine += other.Routine
}

// ProjectCandidate is a project proposed by a discovery run.
type ProjectCandidate struct {
	ID               string              `json:"id"`
	DocumentIDs      []string            `json:"document_ids"`
	CanonicalName    string              `json:"canonical_name"`
	NameVariations   []string            `json:"name_variations,omitempty"`
	GenericName      bool                `json:"generic_name,omitempty"`
	StartDate        *time.Time          `json:"start_date,omitempty"`
	EndDate          *time.Time          `json:"end_date,omitempty"`
	Contributors     []RankedContributor `json:"contributors,omitempty"`
	Signals          SignalTotals        `json:"signals"`
	EligibilityScore float64             `json:"eligibility_score"`
	Confidence       float64             `json:"confidence"`
	Summary          string              `json:"summary"`
	DiscoverySource  DiscoverySource     `json:"discovery_source"`
	Evidence         map[string][]string `json:"evidence,omitempty"`
}

// ConfidenceTier buckets candidates for review.
type ConfidenceTier string

// Confidence tiers.
const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// MaxRankedContributors bounds the contributor list of a candidate.
const MaxRankedContributors = 15

// RankContributors sorts by score descending, then name, and keeps the top
// MaxRankedContributors.
func RankContributors(list []RankedContributor) []RankedContributor {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}

		return list[i].Name < list[j].Name
	})

	if len(list) > MaxRankedContributors {
		list = list[:MaxRankedContributors]
	}

	return list
}

// MergeEvidence appends phrases from src into dst per category, skipping
// duplicates and keeping at most limit phrases per category.
func MergeEvidence(dst, src map[string][]string, limit int) map[string][]string {
	if len(src) == 0 {
		return dst
	}

	if dst == nil {
		dst = make(map[string][]string, len(src))
	}

	for category, phrases := range src {
		for _, p := range phrases {
			if len(dst[category]) >= limit || slices.Contains(dst[category], p) {
				continue
			}

			dst[category] = append(dst[category], p)
		}
	}

	return dst
}

// Describe renders a one-line factual summary of the candidate.
func (c *ProjectCandidate) Describe() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d documents", len(c.DocumentIDs))

	if c.StartDate != nil && c.EndDate != nil {
		fmt.Fprintf(&b, " from %s to %s", c.StartDate.Format(time.DateOnly), c.EndDate.Format(time.DateOnly))
	}

	if n := len(c.Contributors); n > 0 {
		fmt.Fprintf(&b, ", %d contributors", n)
	}

	fmt.Fprintf(&b, "; signals u=%d s=%d f=%d a=%d r=%d",
		c.Signals.Uncertainty, c.Signals.Systematic, c.Signals.Failure, c.Signals.Advancement, c.Signals.Routine)

	return b.String()
}
