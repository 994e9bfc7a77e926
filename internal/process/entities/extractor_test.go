package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "March 15, 2024", want: "2024-03-15", wantOK: true},
		{in: "march 15 2024", want: "2024-03-15", wantOK: true},
		{in: "Q2 2024", want: "2024-04-01", wantOK: true},
		{in: "Q4-2023", want: "2023-10-01", wantOK: true},
		{in: "2024-01-10", want: "2024-01-10", wantOK: true},
		{in: "03/02/2024", want: "2024-03-02", wantOK: true},
		{in: "15 March 2024", want: "2024-03-15", wantOK: true},
		{in: "15th March, 2024", want: "2024-03-15", wantOK: true},
		{in: "March 2024", want: "2024-03-01", wantOK: true},
		{in: "Sep 2023", want: "2023-09-01", wantOK: true},
		{in: "02/30/2024", wantOK: false},
		{in: "2024-13-45", wantOK: false},
		{in: "January 5, 1850", wantOK: false},
		{in: "not a date", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var (
				got string
				ok  bool
			)

			require.NotPanics(t, func() { got, ok = ParseDate(tt.in) })
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtract_Dates(t *testing.T) {
	e := NewExtractor()

	text := "Kickoff on 2024-01-10. Follow-up March 2, 2024 and again 15 March 2024. " +
		"Budget for Q3 2024 and June 2024. Repeat 2024-01-10. Bogus 2024-02-31."

	got := e.Extract(text)

	assert.Equal(t, []string{"2024-01-10", "2024-03-02", "2024-03-15", "2024-06-01", "2024-07-01"}, got.Dates)
}

func TestExtract_Identifiers(t *testing.T) {
	e := NewExtractor()

	text := "Tracking AURORA-12 and AURORA-15 under Project Aurora. Branch feature/aurora-ml merged. " +
		"Project Code: NEBULA7. Project Status was reviewed."

	got := e.Extract(text)

	assert.Equal(t, []string{"AURORA-12", "AURORA-15"}, got.Identifiers)
	assert.Equal(t, []string{"Project Aurora", "aurora-ml", "NEBULA7"}, got.ProjectNames)
}

func TestExtract_TechnicalTerms(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("We moved the GPU pipeline to TensorFlow v2.3 and tuned the LSTM with batchSize 64 using lib 1.2.3. THE END.")

	assert.Equal(t, []string{"GPU", "LSTM", "TensorFlow", "batchSize", "v2.3", "1.2.3"}, got.TechnicalTerms)
}

func TestExtract_Contributors(t *testing.T) {
	e := NewExtractor()

	text := strings.Join([]string{
		"From: Jane Doe <jane.doe@acme.com>",
		"To: John Smith, Mary Major",
		"Cc: Alex Roe",
		"",
		"Notes prepared after review.",
		"",
		"Attendees: Priya Patel (Engineering Manager), Sam Lee",
		"",
		"Thanks,",
		"Jane Doe",
		"Senior Engineer",
	}, "\n")

	got := byName(e.Extract(text).Contributors)

	require.Contains(t, got, "Jane Doe")
	assert.Equal(t, "Senior Engineer", got["Jane Doe"].Title)
	assert.Equal(t, domain.RoleTechnical, got["Jane Doe"].RoleType)
	assert.True(t, got["Jane Doe"].IsQualifiedPersonnel)
	assert.Equal(t, domain.ContributionAuthor, got["Jane Doe"].ContributionType)

	require.Contains(t, got, "Priya Patel")
	assert.Equal(t, domain.RoleManagement, got["Priya Patel"].RoleType)
	assert.True(t, got["Priya Patel"].IsQualifiedPersonnel)
	assert.Equal(t, domain.ContributionAttendee, got["Priya Patel"].ContributionType)

	assert.Equal(t, domain.ContributionRecipient, got["John Smith"].ContributionType)
	assert.Equal(t, domain.ContributionRecipient, got["Mary Major"].ContributionType)
	assert.Equal(t, domain.ContributionRecipient, got["Alex Roe"].ContributionType)
	assert.Equal(t, domain.ContributionAttendee, got["Sam Lee"].ContributionType)
	assert.Equal(t, domain.RoleUnknown, got["Sam Lee"].RoleType)
	assert.Len(t, got, 6)
}

func TestExtract_CommaTitleUpgradedByHeader(t *testing.T) {
	e := NewExtractor()

	got := byName(e.Extract("Author: Jane Doe, Senior Engineer\nThe model was unable to predict behavior.").Contributors)

	require.Contains(t, got, "Jane Doe")
	assert.Equal(t, domain.ContributionAuthor, got["Jane Doe"].ContributionType)
	assert.Equal(t, "Senior Engineer", got["Jane Doe"].Title)
	assert.True(t, got["Jane Doe"].IsQualifiedPersonnel)
}

func TestExtract_HonorificAndPipe(t *testing.T) {
	e := NewExtractor()

	text := "Reviewed by Dr. Ada Lovelace.\nGrace Hopper | Principal Software Architect"
	got := byName(e.Extract(text).Contributors)

	require.Contains(t, got, "Ada Lovelace")
	assert.Equal(t, "Dr.", got["Ada Lovelace"].Title)
	assert.True(t, got["Ada Lovelace"].IsQualifiedPersonnel)

	require.Contains(t, got, "Grace Hopper")
	assert.Equal(t, domain.ContributionAuthor, got["Grace Hopper"].ContributionType)
	assert.Equal(t, domain.RoleTechnical, got["Grace Hopper"].RoleType)
}

func TestExtract_IgnoresPlaceNames(t *testing.T) {
	e := NewExtractor()

	got := e.Extract("The office moved to Toronto, Ontario last spring.")

	assert.Empty(t, got.Contributors)
}

func TestExtract_Truncates(t *testing.T) {
	e := NewExtractor()

	text := strings.Repeat("x", MaxTextLength) + " 2024-05-05"
	got := e.Extract(text)

	assert.Empty(t, got.Dates)
}

func TestTruncate_CountsCharacters(t *testing.T) {
	assert.Equal(t, "ééé", truncate("éééé", 3))
	assert.Equal(t, "ab", truncate("ab", 3))

	text := strings.Repeat("é", MaxTextLength-11) + " 2024-05-05"
	got := NewExtractor().Extract(text)

	assert.Equal(t, []string{"2024-05-05"}, got.Dates)
}

func TestContributorSet_MergeNeverDowngrades(t *testing.T) {
	set := newContributorSet()

	set.add(domain.Contributor{Name: "Jane Doe", Title: "Senior Engineer", RoleType: domain.RoleTechnical, IsQualifiedPersonnel: true, ContributionType: domain.ContributionMentioned})
	set.add(domain.Contributor{Name: "Jane Doe", ContributionType: domain.ContributionAuthor})
	set.add(domain.Contributor{Name: "Jane Doe", Title: "Office Assistant", RoleType: domain.RoleSupport, ContributionType: domain.ContributionRecipient})

	got := set.list()

	require.Len(t, got, 1)
	assert.Equal(t, "Senior Engineer", got[0].Title)
	assert.Equal(t, domain.RoleTechnical, got[0].RoleType)
	assert.True(t, got[0].IsQualifiedPersonnel)
	assert.Equal(t, domain.ContributionAuthor, got[0].ContributionType)
}

func TestClassifyTitle(t *testing.T) {
	tests := []struct {
		title         string
		wantRole      domain.RoleType
		wantQualified bool
	}{
		{title: "Senior Engineer", wantRole: domain.RoleTechnical, wantQualified: true},
		{title: "Data Scientist", wantRole: domain.RoleTechnical, wantQualified: true},
		{title: "Engineering Manager", wantRole: domain.RoleManagement, wantQualified: true},
		{title: "Chief Technology Officer", wantRole: domain.RoleManagement, wantQualified: true},
		{title: "Office Manager", wantRole: domain.RoleManagement, wantQualified: false},
		{title: "Executive Assistant", wantRole: domain.RoleSupport, wantQualified: false},
		{title: "Payroll Clerk", wantRole: domain.RoleSupport, wantQualified: false},
		{title: "Lab Specialist", wantRole: domain.RoleTechnical, wantQualified: true},
		{title: "Ontario", wantRole: domain.RoleUnknown, wantQualified: false},
		{title: "", wantRole: domain.RoleUnknown, wantQualified: false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			role, qualified := ClassifyTitle(tt.title)
			assert.Equal(t, tt.wantRole, role)
			assert.Equal(t, tt.wantQualified, qualified)
		})
	}
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("Jane Doe"))
	assert.True(t, IsValidName("Mary-Kate O'Neil"))
	assert.False(t, IsValidName("Jane"))
	assert.False(t, IsValidName("jane doe"))
	assert.False(t, IsValidName("Dear John"))
	assert.False(t, IsValidName("Senior Engineer"))
	assert.False(t, IsValidName("A B"))
	assert.False(t, IsValidName("One Two Three Four Five"))
}

func byName(cs []domain.Contributor) map[string]domain.Contributor {
	out := make(map[string]domain.Contributor, len(cs))
	for _, c := range cs {
		out[c.Name] = c
	}

	return out
}
