package assembly

import (
	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

var typeWeight = map[domain.ContributionType]float64{
	domain.ContributionAuthor:    3,
	domain.ContributionAttendee:  2,
	domain.ContributionRecipient: 1,
	domain.ContributionMentioned: 0.5,
}

var roleWeight = map[domain.RoleType]float64{
	domain.RoleTechnical:  2,
	domain.RoleManagement: 1,
	domain.RoleSupport:    0.5,
	domain.RoleUnknown:    0,
}

var roleRank = map[domain.RoleType]int{
	domain.RoleTechnical:  3,
	domain.RoleManagement: 2,
	domain.RoleSupport:    1,
}

// Tally aggregates contributor evidence across documents. Scores add, the
// best profile seen wins, and contribution type only upgrades, so the result
// does not depend on the order documents or tallies are combined.
type Tally struct {
	byName map[string]*domain.RankedContributor
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{byName: make(map[string]*domain.RankedContributor)}
}

// AddDocument scores every contributor of doc once.
func (t *Tally) AddDocument(doc domain.Document) {
	if doc.Entities == nil {
		return
	}

	for _, c := range doc.Entities.Contributors {
		if c.RoleType == "" {
			c.RoleType = domain.RoleUnknown
		}

		t.add(domain.RankedContributor{
			Contributor:   c,
			Score:         typeWeight[c.ContributionType] + roleWeight[c.RoleType],
			DocumentCount: 1,
		})
	}
}

// Merge folds another tally into t.
func (t *Tally) Merge(other *Tally) {
	for _, rc := range other.byName {
		t.add(*rc)
	}
}

// Len returns the number of distinct contributors.
func (t *Tally) Len() int {
	return len(t.byName)
}

// Ranked returns contributors by descending score, capped at the top
// domain.MaxRankedContributors.
func (t *Tally) Ranked() []domain.RankedContributor {
	out := make([]domain.RankedContributor, 0, len(t.byName))
	for _, rc := range t.byName {
		out = append(out, *rc)
	}

	return domain.RankContributors(out)
}

func (t *Tally) add(rc domain.RankedContributor) {
	existing, ok := t.byName[rc.Name]
	if !ok {
		t.byName[rc.Name] = &rc
		return
	}

	existing.Score += rc.Score
	existing.DocumentCount += rc.DocumentCount

	if betterProfile(rc.Contributor, existing.Contributor) {
		existing.Title = rc.Title
		existing.RoleType = rc.RoleType
		existing.IsQualifiedPersonnel = rc.IsQualifiedPersonnel
	}

	if rc.ContributionType.Priority() > existing.ContributionType.Priority() {
		existing.ContributionType = rc.ContributionType
	}
}

// betterProfile orders title evidence: qualified first, then role, then a
// longer title, then lexical order.
func betterProfile(a, b domain.Contributor) bool {
	if a.IsQualifiedPersonnel != b.IsQualifiedPersonnel {
		return a.IsQualifiedPersonnel
	}

	if ra, rb := roleRank[a.RoleType], roleRank[b.RoleType]; ra != rb {
		return ra > rb
	}

	if len(a.Title) != len(b.Title) {
		return len(a.Title) > len(b.Title)
	}

	return a.Title < b.Title
}
