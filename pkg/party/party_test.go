package party_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wahlkompass/pkg/party"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Alternative für Deutschland", "afd"},
		{"Bündnis Sahra Wagenknecht", "bsw"},
		{"CDU/CSU", "cdu_csu"},
		{"DIE LINKE", "linke"},
		{"Freie Demokratische Partei", "fdp"},
		{"BÜNDNIS 90/DIE GRÜNEN", "gruene"},
		{"Sozialdemokratische Partei Deutschlands", "spd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, party.Normalize(tt.name))
		})
	}
}

func TestNormalizeUnknownPassesThrough(t *testing.T) {
	got := party.Normalize("Piraten Partei/Nord")

	assert.Equal(t, "piraten_partei_nord", got)
	assert.False(t, party.IsCanonical(got))
	// Slugs are round-trip stable.
	assert.Equal(t, got, party.Normalize(got))
}

func TestCanonicalSet(t *testing.T) {
	assert.Len(t, party.Canonical, 7)
	for _, key := range party.Canonical {
		assert.True(t, party.IsCanonical(key))
		// Canonical keys normalize to themselves.
		assert.Equal(t, key, party.Normalize(key))
	}
	assert.False(t, party.IsCanonical("csu"))
}

func TestProgramURL(t *testing.T) {
	for _, key := range party.Canonical {
		assert.NotEqual(t, "#", party.ProgramURL(key), "missing Wahlprogram link for %s", key)
	}
	assert.Equal(t, "#", party.ProgramURL("piraten"))
}
