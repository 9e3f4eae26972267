package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByChannel(t *testing.T) {
	social := ByChannel("social")
	require.NotEmpty(t, social)
	for _, it := range social {
		assert.Equal(t, "Social", it.Channel)
	}
	assert.Empty(t, ByChannel("Skywriting"))
}

func TestLookupDMA(t *testing.T) {
	byName, ok := LookupDMA("new york")
	require.True(t, ok)
	assert.Equal(t, 501, byName.Code)

	byCode, ok := LookupDMA("803")
	require.True(t, ok)
	assert.Equal(t, "Los Angeles", byCode.Name)

	_, ok = LookupDMA("Atlantis")
	assert.False(t, ok)
}

func TestTopDMAsOrdered(t *testing.T) {
	top := TopDMAs(5)
	require.Len(t, top, 5)
	for i := 1; i < len(top); i++ {
		assert.Less(t, top[i-1].Rank, top[i].Rank)
	}
	// Asking for more than exists returns everything.
	assert.Len(t, TopDMAs(1000), len(dmas))
}
