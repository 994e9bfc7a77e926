package names

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Project AURORA-2024", want: "AURORA"},
		{in: "aurora", want: "AURORA"},
		{in: "Aurora v2.1", want: "AURORA"},
		{in: "Aurora Phase 2", want: "AURORA"},
		{in: "codename: Nebula", want: "NEBULA"},
		{in: "PRJ_helios_7", want: "HELIOS"},
		{in: "aurora-ml", want: "AURORA_ML"},
		{in: "Café Olé", want: "CAFE_OLE"},
		{in: "KICKOFF", want: ""},
		{in: "Kickoff Meeting", want: ""},
		{in: "Aurora Platform", want: ""},
		{in: "Project", want: ""},
		{in: "2024", want: ""},
		{in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestAreSimilar(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "equal after normalisation", a: "Aurora", b: "AURORA-2024", want: true},
		{name: "containment under gap", a: "Aurora", b: "Auroral", want: true},
		{name: "plural containment", a: "Quantum Sensor", b: "Quantum Sensors", want: true},
		{name: "edit distance", a: "Helios", b: "Helius", want: true},
		{name: "different", a: "Aurora", b: "Nebula", want: false},
		{name: "containment over gap", a: "Sun", b: "Sunflower", want: false},
		{name: "stopwords never match", a: "KICKOFF", b: "KICKOFF", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.AreSimilar(tt.a, tt.b, DefaultSimilarityThreshold))
		})
	}
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("", ""), 1e-9)
	assert.InDelta(t, 1.0, Ratio("ABC", "ABC"), 1e-9)
	assert.InDelta(t, 5.0/6.0, Ratio("HELIOS", "HELIUS"), 1e-9)
}

func TestGroupBySimilarity(t *testing.T) {
	n := NewNormalizer()

	input := []string{"Aurora 2024", "Nebula", "Project Aurora", "aurora", "NEBULA v2", "Helios", "Kickoff", "aurora"}

	groups := n.GroupBySimilarity(input)

	require.Len(t, groups, 3)

	assert.Equal(t, "Project Aurora", groups[0].Canonical)
	assert.Equal(t, "AURORA", groups[0].Key)
	assert.Equal(t, []string{"Aurora 2024", "Project Aurora", "aurora"}, groups[0].Variations)

	assert.Equal(t, "Helios", groups[1].Canonical)

	assert.Equal(t, "NEBULA v2", groups[2].Canonical)
	assert.ElementsMatch(t, []string{"Nebula", "NEBULA v2"}, groups[2].Variations)

	assert.True(t, groups[0].Has("aurora"))
	assert.False(t, groups[0].Has("Kickoff"))
}

func TestGroupBySimilarity_OrderIndependent(t *testing.T) {
	n := NewNormalizer()

	input := []string{"Helius", "Aurora 2024", "Helios", "aurora", "Nebula", "Project Aurora"}
	reversed := slices.Clone(input)
	slices.Reverse(reversed)

	assert.Equal(t, n.GroupBySimilarity(input), n.GroupBySimilarity(reversed))
}

func TestWithThreshold(t *testing.T) {
	strict := NewNormalizer(WithThreshold(0.95))
	assert.InDelta(t, 0.95, strict.Threshold(), 1e-9)

	groups := strict.GroupBySimilarity([]string{"Helios", "Helius"})
	assert.Len(t, groups, 2)

	ignored := NewNormalizer(WithThreshold(1.5))
	assert.InDelta(t, DefaultSimilarityThreshold, ignored.Threshold(), 1e-9)
}
