package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tripIDs(trips []Trip) []string {
	ids := make([]string, 0, len(trips))
	for _, t := range trips {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestSearchMatchesRoute(t *testing.T) {
	trips := Search("Hanoi", "Sapa")
	assert.Equal(t, []string{"HN-SP-001", "HN-SP-002", "HN-SP-003"}, tripIDs(trips))
}

func TestSearchStripsCityToken(t *testing.T) {
	trips := Search("Ho Chi Minh City", "Da Lat")
	assert.Equal(t, []string{"HCM-DL-001", "HCM-DL-002"}, tripIDs(trips))
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	trips := Search("hAnOi", "ha long")
	require.Len(t, trips, 1)
	assert.Equal(t, "HN-HL-001", trips[0].ID)
}

func TestSearchNoMatch(t *testing.T) {
	assert.Empty(t, Search("Hanoi", "Da Lat"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ho chi minh", Normalize("Ho Chi Minh City"))
	assert.Equal(t, "hanoi", Normalize("  Hanoi "))
	assert.Equal(t, "sapa", Normalize("Sapa"))
}
