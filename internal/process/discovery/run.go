package discovery

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	coreerrors "github.com/lueurxax/sred-discovery/internal/core/errors"
)

// Strategy selects how documents are grouped into candidates.
type Strategy string

// Discovery strategies.
const (
	StrategySignalFirst    Strategy = "signal_first"
	StrategyNamesOnly      Strategy = "names_only"
	StrategyClusteringOnly Strategy = "clustering_only"
	StrategyHybrid         Strategy = "hybrid"
)

// ParseStrategy validates a strategy name. Blank input selects signal_first.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategySignalFirst:
		return StrategySignalFirst, nil
	case StrategyNamesOnly:
		return StrategyNamesOnly, nil
	case StrategyClusteringOnly:
		return StrategyClusteringOnly, nil
	case StrategyHybrid:
		return StrategyHybrid, nil
	default:
		return "", fmt.Errorf("unknown strategy %q: %w", s, coreerrors.ErrInvalidInput)
	}
}

// Status is the lifecycle state of a run.
type Status string

// Run states. Completed and failed are terminal.
const (
	StatusFetching      Status = "fetching"
	StatusBackfilling   Status = "backfilling"
	StatusDiscovering   Status = "discovering"
	StatusDeduplicating Status = "deduplicating"
	StatusCategorizing  Status = "categorizing"
	StatusCompleted     Status = "completed"
	StatusFailed        Status = "failed"
)

// Terminal reports whether no further transitions happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Stats counts what a run saw.
type Stats struct {
	Documents     int `json:"documents"`
	SignalBearing int `json:"signal_bearing"`
	Excluded      int `json:"excluded"`
	Clusters      int `json:"clusters"`
}

// Run is the record of one discovery execution over a claim.
// A failed run carries only its message; its tiers and orphans are empty.
type Run struct {
	ID          string                    `json:"id"`
	ClaimID     string                    `json:"claim_id"`
	Strategy    Strategy                  `json:"strategy"`
	Status      Status                    `json:"status"`
	StartedAt   time.Time                 `json:"started_at"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
	Message     string                    `json:"message,omitempty"`
	High        []domain.ProjectCandidate `json:"high"`
	Medium      []domain.ProjectCandidate `json:"medium"`
	Low         []domain.ProjectCandidate `json:"low"`
	Orphans     []string                  `json:"orphans"`
	// Backfilled lists documents whose signals or entities were recomputed.
	// The host may persist them.
	Backfilled []domain.Document `json:"-"`
	Stats      Stats             `json:"stats"`
}

// Candidates returns every candidate, high tier first.
func (r *Run) Candidates() []domain.ProjectCandidate {
	out := make([]domain.ProjectCandidate, 0, len(r.High)+len(r.Medium)+len(r.Low))
	out = append(out, r.High...)
	out = append(out, r.Medium...)

	return append(out, r.Low...)
}

// Confidence tier boundaries.
const (
	highConfidence   = 0.7
	mediumConfidence = 0.4
)

// TierOf buckets a confidence value.
func TierOf(confidence float64) domain.ConfidenceTier {
	switch {
	case confidence >= highConfidence:
		return domain.TierHigh
	case confidence >= mediumConfidence:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

// categorize splits candidates into tiers, each ordered by eligibility
// descending and then by name.
func categorize(cands []domain.ProjectCandidate) (high, medium, low []domain.ProjectCandidate) {
	for _, c := range cands {
		switch TierOf(c.Confidence) {
		case domain.TierHigh:
			high = append(high, c)
		case domain.TierMedium:
			medium = append(medium, c)
		default:
			low = append(low, c)
		}
	}

	for _, tier := range [][]domain.ProjectCandidate{high, medium, low} {
		sort.SliceStable(tier, func(i, j int) bool {
			if tier[i].EligibilityScore != tier[j].EligibilityScore {
				return tier[i].EligibilityScore > tier[j].EligibilityScore
			}

			return tier[i].CanonicalName < tier[j].CanonicalName
		})
	}

	return high, medium, low
}

// orphansOf returns the sorted IDs of docs that no candidate covers.
func orphansOf(docs []domain.Document, cands []domain.ProjectCandidate) []string {
	covered := make(map[string]bool)

	for _, c := range cands {
		for _, id := range c.DocumentIDs {
			covered[id] = true
		}
	}

	var out []string

	for _, d := range docs {
		if !covered[d.ID] {
			out = append(out, d.ID)
			covered[d.ID] = true
		}
	}

	sort.Strings(out)

	return out
}
