package assembly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/process/entities"
	"github.com/lueurxax/sred-discovery/internal/process/names"
	"github.com/lueurxax/sred-discovery/internal/process/signals"
)

const (
	scenarioText1 = "Author: Jane Doe, Senior Engineer\n" +
		"We were unable to predict behavior of the cache under load. The technical uncertainty is " +
		"whether it was possible to shard it. We wrote a hypothesis for the experiment."
	scenarioText2 = "Author: Jane Doe, Senior Engineer\n" +
		"We tested the hypothesis with a controlled test and measured latency across iterations. " +
		"Benchmark results were analyzed."
	scenarioText3 = "The team achieved improved throughput on the shard router."
)

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return &t
}

func analysed(id, date, text string) domain.Document {
	profile := signals.NewDetector().Detect(text)
	ents := entities.NewExtractor().Extract(text)

	return domain.Document{
		ID:           id,
		Text:         text,
		Date:         day(date),
		DocumentType: "technical_report",
		Embedding:    []float32{1, 0.1, 0},
		Signals:      &profile,
		Entities:     &ents,
	}
}

func scenarioDocs() []domain.Document {
	return []domain.Document{
		analysed("doc-1", "2024-01-10", scenarioText1),
		analysed("doc-2", "2024-03-02", scenarioText2),
		analysed("doc-3", "2024-06-20", scenarioText3),
	}
}

func TestAssemble_ThreeDocumentScenario(t *testing.T) {
	a := NewAssembler(names.NewNormalizer(), nil)

	c := a.Assemble(scenarioDocs(), domain.SourceSignal)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, []string{"doc-1", "doc-2", "doc-3"}, c.DocumentIDs)
	assert.Equal(t, day("2024-01-10"), c.StartDate)
	assert.Equal(t, day("2024-06-20"), c.EndDate)

	require.NotEmpty(t, c.Contributors)
	jane := c.Contributors[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, domain.RoleTechnical, jane.RoleType)
	assert.True(t, jane.IsQualifiedPersonnel)
	assert.Equal(t, "Senior Engineer", jane.Title)
	assert.Equal(t, 2, jane.DocumentCount)

	assert.GreaterOrEqual(t, c.Signals.Uncertainty, 3)
	assert.GreaterOrEqual(t, c.Signals.Systematic, 5)
	assert.InDelta(t, 1.0, c.EligibilityScore, 1e-9)
	assert.Greater(t, c.Confidence, 0.4)
	assert.LessOrEqual(t, c.Confidence, 1.0)

	assert.Equal(t, "Technical Report Project", c.CanonicalName)
	assert.Equal(t, domain.SourceSignal, c.DiscoverySource)
	assert.Contains(t, c.Evidence[domain.CategoryUncertainty], "unable to predict")
	assert.Contains(t, c.Summary, "3 documents")
}

func TestAssemble_InputOrderIndependent(t *testing.T) {
	a := NewAssembler(nil, nil)

	docs := scenarioDocs()
	reversed := []domain.Document{docs[2], docs[0], docs[1]}

	c1 := a.Assemble(docs, domain.SourceClustering)
	c2 := a.Assemble(reversed, domain.SourceClustering)
	c1.ID, c2.ID = "", ""

	assert.Equal(t, c1, c2)
}

func TestAssembleNamed(t *testing.T) {
	a := NewAssembler(nil, nil)

	group := names.NameGroup{Canonical: "Project Aurora", Key: "AURORA", Variations: []string{"AURORA-2024", "Project Aurora"}}
	c := a.AssembleNamed(scenarioDocs()[:2], group, domain.SourceNameBased)

	assert.Equal(t, "Project Aurora", c.CanonicalName)
	assert.Equal(t, []string{"AURORA-2024"}, c.NameVariations)
	assert.Equal(t, domain.SourceNameBased, c.DiscoverySource)
	assert.Equal(t, []string{"doc-1", "doc-2"}, c.DocumentIDs)
}

func withEntities(id string, e domain.ExtractedEntities, docType string) domain.Document {
	return domain.Document{ID: id, Entities: &e, DocumentType: docType}
}

func TestChooseName(t *testing.T) {
	a := NewAssembler(nil, nil)

	tests := []struct {
		name           string
		docs           []domain.Document
		want           string
		wantVariations []string
		wantGeneric    bool
	}{
		{
			name: "most frequent name candidate",
			docs: []domain.Document{
				withEntities("1", domain.ExtractedEntities{ProjectNames: []string{"Project Aurora"}}, ""),
				withEntities("2", domain.ExtractedEntities{ProjectNames: []string{"AURORA-2024", "Project Aurora"}}, ""),
				withEntities("3", domain.ExtractedEntities{ProjectNames: []string{"Nebula"}}, ""),
			},
			want:           "Project Aurora",
			wantVariations: []string{"AURORA-2024"},
		},
		{
			name: "identifier prefix",
			docs: []domain.Document{
				withEntities("1", domain.ExtractedEntities{ProjectNames: []string{"Kickoff"}, Identifiers: []string{"AUR-1", "AUR-2"}}, ""),
				withEntities("2", domain.ExtractedEntities{Identifiers: []string{"NEB-3"}}, ""),
			},
			want: "Project AUR",
		},
		{
			name: "repeated technical term",
			docs: []domain.Document{
				withEntities("1", domain.ExtractedEntities{TechnicalTerms: []string{"LSTM"}}, "memo"),
				withEntities("2", domain.ExtractedEntities{TechnicalTerms: []string{"LSTM", "GPU"}}, "memo"),
			},
			want: "LSTM R&D",
		},
		{
			name: "document type",
			docs: []domain.Document{
				withEntities("1", domain.ExtractedEntities{TechnicalTerms: []string{"GPU"}}, "meeting_notes"),
				withEntities("2", domain.ExtractedEntities{}, "meeting_notes"),
				withEntities("3", domain.ExtractedEntities{}, "email"),
			},
			want:        "Meeting Notes Project",
			wantGeneric: true,
		},
		{
			name: "fallback",
			docs: []domain.Document{{ID: "1"}, {ID: "2"}},
			want:        "Unnamed Project (2 documents)",
			wantGeneric: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, variations, generic := a.chooseName(tt.docs)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantVariations, variations)
			assert.Equal(t, tt.wantGeneric, generic)
		})
	}
}

func contributor(name, title string, role domain.RoleType, qualified bool, ct domain.ContributionType) domain.Contributor {
	return domain.Contributor{Name: name, Title: title, RoleType: role, IsQualifiedPersonnel: qualified, ContributionType: ct}
}

func TestTally_OrderIndependentAndAdditive(t *testing.T) {
	docA := withEntities("a", domain.ExtractedEntities{Contributors: []domain.Contributor{
		contributor("Jane Doe", "", domain.RoleUnknown, false, domain.ContributionMentioned),
		contributor("Sam Lee", "Office Assistant", domain.RoleSupport, false, domain.ContributionAuthor),
	}}, "")
	docB := withEntities("b", domain.ExtractedEntities{Contributors: []domain.Contributor{
		contributor("Jane Doe", "Senior Engineer", domain.RoleTechnical, true, domain.ContributionAuthor),
	}}, "")
	docC := withEntities("c", domain.ExtractedEntities{Contributors: []domain.Contributor{
		contributor("Jane Doe", "Engineering Manager", domain.RoleManagement, true, domain.ContributionRecipient),
		contributor("Sam Lee", "", domain.RoleUnknown, false, domain.ContributionRecipient),
	}}, "")

	first := NewTally()
	first.AddDocument(docA)
	first.AddDocument(docB)

	second := NewTally()
	second.AddDocument(docC)
	first.Merge(second)

	all := NewTally()
	all.AddDocument(docC)
	all.AddDocument(docA)
	all.AddDocument(docB)

	got := first.Ranked()
	assert.Equal(t, all.Ranked(), got)

	require.Len(t, got, 2)
	assert.Equal(t, "Jane Doe", got[0].Name)
	assert.InDelta(t, 7.5, got[0].Score, 1e-9)
	assert.Equal(t, "Senior Engineer", got[0].Title)
	assert.Equal(t, domain.RoleTechnical, got[0].RoleType)
	assert.Equal(t, domain.ContributionAuthor, got[0].ContributionType)
	assert.Equal(t, 3, got[0].DocumentCount)

	assert.Equal(t, "Sam Lee", got[1].Name)
	assert.InDelta(t, 4.5, got[1].Score, 1e-9)
	assert.Equal(t, "Office Assistant", got[1].Title)
}

func TestTally_CapsAtFifteen(t *testing.T) {
	tally := NewTally()

	var cs []domain.Contributor
	for i := 0; i < 20; i++ {
		cs = append(cs, contributor("Person "+string(rune('A'+i))+"x", "", domain.RoleUnknown, false, domain.ContributionMentioned))
	}

	tally.AddDocument(withEntities("d", domain.ExtractedEntities{Contributors: cs}, ""))

	assert.Len(t, tally.Ranked(), domain.MaxRankedContributors)
	assert.Equal(t, 20, tally.Len())
}

func TestClusterEligibility(t *testing.T) {
	strong := domain.SignalTotals{Uncertainty: 3, Systematic: 5}
	assert.InDelta(t, 1.0, ClusterEligibility(strong, 1), 1e-9)

	weak := domain.SignalTotals{Uncertainty: 2, Systematic: 5}
	assert.InDelta(t, 0.5, ClusterEligibility(weak, 1), 1e-9)

	assert.InDelta(t, 0.0, ClusterEligibility(domain.SignalTotals{}, 3), 1e-9)
}

func TestConfidence(t *testing.T) {
	start := day("2024-01-01")

	tests := []struct {
		name string
		end  *time.Time
		want float64
	}{
		{name: "no end", end: nil, want: 0},
		{name: "short span", end: day("2024-01-16"), want: 0.5},
		{name: "ideal span", end: day("2024-06-01"), want: 1},
		{name: "long span floored", end: day("2030-01-01"), want: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, spanScore(start, tt.end), 1e-9)
		})
	}

	c := Confidence(8, start, day("2024-06-01"), 5, 1)
	assert.InDelta(t, 0.3*0.5+0.2+0.2+0.3, c, 1e-9)
	assert.LessOrEqual(t, Confidence(1000, start, day("2024-06-01"), 100, 1), 1.0)
}
