package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/process/names"
)

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return &t
}

func ranked(name string, score float64, title string) domain.RankedContributor {
	return domain.RankedContributor{
		Contributor:   domain.Contributor{Name: name, Title: title, RoleType: domain.RoleUnknown},
		Score:         score,
		DocumentCount: 1,
	}
}

func TestMergeCandidates_UnionAndSum(t *testing.T) {
	a := domain.ProjectCandidate{
		ID:               "a",
		DocumentIDs:      []string{"d3", "d1"},
		CanonicalName:    "Project Aurora",
		Contributors:     []domain.RankedContributor{ranked("Jane Doe", 5, ""), ranked("Sam Lee", 2, "")},
		Signals:          domain.SignalTotals{Uncertainty: 2, Systematic: 1},
		EligibilityScore: 0.4,
		Confidence:       0.7,
		StartDate:        day("2024-02-01"),
		EndDate:          day("2024-05-01"),
		DiscoverySource:  domain.SourceClustering,
		Evidence:         map[string][]string{domain.CategoryUncertainty: {"unable to predict"}},
	}
	b := domain.ProjectCandidate{
		ID:               "b",
		DocumentIDs:      []string{"d2", "d3"},
		CanonicalName:    "AURORA-2024",
		Contributors:     []domain.RankedContributor{ranked("Jane Doe", 3.5, "Senior Engineer")},
		Signals:          domain.SignalTotals{Uncertainty: 1, Advancement: 4},
		EligibilityScore: 0.6,
		Confidence:       0.5,
		StartDate:        day("2024-01-10"),
		EndDate:          day("2024-03-01"),
		DiscoverySource:  domain.SourceNameBased,
		Evidence:         map[string][]string{domain.CategoryUncertainty: {"unable to predict", "unknown whether"}},
	}
	other := domain.ProjectCandidate{ID: "c", DocumentIDs: []string{"d9"}, CanonicalName: "Nebula"}

	got := MergeCandidates([]domain.ProjectCandidate{a, other, b}, names.NewNormalizer(), nil)

	require.Len(t, got, 2)

	merged := got[0]
	assert.Equal(t, "a", merged.ID)
	assert.Equal(t, []string{"d1", "d2", "d3"}, merged.DocumentIDs)
	assert.Equal(t, domain.SourceNameBased, merged.DiscoverySource)
	assert.Equal(t, "AURORA-2024", merged.CanonicalName)
	assert.Equal(t, []string{"Project Aurora"}, merged.NameVariations)

	require.Len(t, merged.Contributors, 2)
	assert.Equal(t, "Jane Doe", merged.Contributors[0].Name)
	assert.InDelta(t, 8.5, merged.Contributors[0].Score, 1e-9)
	assert.Equal(t, "Senior Engineer", merged.Contributors[0].Title)
	assert.InDelta(t, 2.0, merged.Contributors[1].Score, 1e-9)

	assert.Equal(t, domain.SignalTotals{Uncertainty: 3, Systematic: 1, Advancement: 4}, merged.Signals)
	assert.InDelta(t, 0.7, merged.Confidence, 1e-9)
	assert.InDelta(t, 0.6, merged.EligibilityScore, 1e-9)
	assert.Equal(t, day("2024-01-10"), merged.StartDate)
	assert.Equal(t, day("2024-05-01"), merged.EndDate)
	assert.Equal(t, []string{"unable to predict", "unknown whether"}, merged.Evidence[domain.CategoryUncertainty])
	assert.NotEmpty(t, merged.Summary)

	assert.Equal(t, "c", got[1].ID)

	assert.Equal(t, []string{"unable to predict"}, a.Evidence[domain.CategoryUncertainty], "inputs are not mutated")
}

func TestMergeCandidates_GenericNamesStayApart(t *testing.T) {
	cands := []domain.ProjectCandidate{
		{ID: "1", CanonicalName: "Unnamed Project (1 documents)", GenericName: true, DocumentIDs: []string{"a"}},
		{ID: "2", CanonicalName: "Unnamed Project (1 documents)", GenericName: true, DocumentIDs: []string{"b"}},
		{ID: "3", CanonicalName: "Lab Notes Project", GenericName: true, DocumentIDs: []string{"c"}},
		{ID: "4", CanonicalName: "Lab Notes Project", GenericName: true, DocumentIDs: []string{"d"}},
		{ID: "5", CanonicalName: "Status Update", DocumentIDs: []string{"e"}},
		{ID: "6", CanonicalName: "status update", DocumentIDs: []string{"f"}},
	}

	got := MergeCandidates(cands, names.NewNormalizer(), nil)

	require.Len(t, got, len(cands))

	for i, c := range got {
		assert.Equal(t, cands[i].ID, c.ID)
		assert.Equal(t, cands[i].DocumentIDs, c.DocumentIDs)
	}
}

func TestMergeCandidates_Passthrough(t *testing.T) {
	assert.Empty(t, MergeCandidates(nil, names.NewNormalizer(), nil))

	single := []domain.ProjectCandidate{{ID: "x", CanonicalName: "Aurora"}}
	assert.Equal(t, single, MergeCandidates(single, names.NewNormalizer(), nil))
}
