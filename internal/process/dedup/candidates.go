package dedup

import (
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/process/names"
	"github.com/lueurxax/sred-discovery/internal/process/signals"
)

const logKeyMergedInto = "merged_into"

// MergeCandidates folds together candidates whose canonical names normalise
// to the same key. Generic labels and names that normalise to "" identify no
// project, so those candidates are never merged. Output keeps first-seen
// order.
//
// A merge unions document sets and name variations, sums contributor scores
// and signal counts, keeps the maximum confidence and eligibility, widens the
// date range, and keeps the source with the higher precedence along with its
// canonical name.
func MergeCandidates(cands []domain.ProjectCandidate, normalizer *names.Normalizer, logger *zerolog.Logger) []domain.ProjectCandidate {
	if len(cands) < 2 {
		return cands
	}

	order := make([]string, 0, len(cands))
	byKey := make(map[string]*domain.ProjectCandidate, len(cands))

	for i, c := range cands {
		key, ok := mergeKey(c, normalizer)
		if !ok {
			key = "#" + strconv.Itoa(i)
		}

		existing, ok := byKey[key]
		if !ok {
			c.Evidence = domain.MergeEvidence(nil, c.Evidence, signals.MaxEvidencePhrases)
			byKey[key] = &c
			order = append(order, key)

			continue
		}

		if logger != nil {
			logger.Debug().
				Str(logKeyItemID, c.ID).
				Str(logKeyMergedInto, existing.ID).
				Str("name", c.CanonicalName).
				Msg("Merging duplicate candidate")
		}

		mergeInto(existing, c)
	}

	out := make([]domain.ProjectCandidate, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}

	return out
}

// mergeKey returns the dedup key of c. It reports false when c must stay
// on its own.
func mergeKey(c domain.ProjectCandidate, normalizer *names.Normalizer) (string, bool) {
	if c.GenericName {
		return "", false
	}

	if normalizer == nil {
		normalizer = names.NewNormalizer()
	}

	key := normalizer.Normalize(c.CanonicalName)

	return key, key != ""
}

func mergeInto(dst *domain.ProjectCandidate, src domain.ProjectCandidate) {
	dst.DocumentIDs = unionSorted(dst.DocumentIDs, src.DocumentIDs)

	variations := append([]string{dst.CanonicalName, src.CanonicalName}, dst.NameVariations...)
	variations = append(variations, src.NameVariations...)

	if src.DiscoverySource.Precedence() > dst.DiscoverySource.Precedence() {
		dst.DiscoverySource = src.DiscoverySource
		dst.CanonicalName = src.CanonicalName
	}

	dst.NameVariations = uniqueExcept(variations, dst.CanonicalName)

	dst.Contributors = sumContributors(dst.Contributors, src.Contributors)
	dst.Signals.Add(src.Signals)
	dst.Confidence = max(dst.Confidence, src.Confidence)
	dst.EligibilityScore = max(dst.EligibilityScore, src.EligibilityScore)
	dst.Evidence = domain.MergeEvidence(dst.Evidence, src.Evidence, signals.MaxEvidencePhrases)

	if src.StartDate != nil && (dst.StartDate == nil || src.StartDate.Before(*dst.StartDate)) {
		dst.StartDate = src.StartDate
	}

	if src.EndDate != nil && (dst.EndDate == nil || src.EndDate.After(*dst.EndDate)) {
		dst.EndDate = src.EndDate
	}

	dst.Summary = dst.Describe()
}

func sumContributors(a, b []domain.RankedContributor) []domain.RankedContributor {
	merged := make([]domain.RankedContributor, 0, len(a)+len(b))
	index := make(map[string]int, len(a)+len(b))

	for _, list := range [][]domain.RankedContributor{a, b} {
		for _, rc := range list {
			i, ok := index[rc.Name]
			if !ok {
				index[rc.Name] = len(merged)
				merged = append(merged, rc)

				continue
			}

			merged[i].Score += rc.Score
			merged[i].DocumentCount += rc.DocumentCount
			merged[i].Merge(rc.Contributor)
		}
	}

	return domain.RankContributors(merged)
}

func unionSorted(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, id := range a {
		set[id] = true
	}

	for _, id := range b {
		set[id] = true
	}

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}

	sort.Strings(out)

	return out
}

func uniqueExcept(values []string, skip string) []string {
	seen := map[string]bool{skip: true, "": true}

	var out []string

	for _, v := range values {
		if seen[v] {
			continue
		}

		seen[v] = true
		out = append(out, v)
	}

	return out
}
