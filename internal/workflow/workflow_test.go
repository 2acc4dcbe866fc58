package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedPresets(t *testing.T) {
	table, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, table)

	split, ok := table[KindBatchSplit]
	require.True(t, ok)
	assert.True(t, split.SupportsSplit)
	assert.GreaterOrEqual(t, split.MinItems, 2)
	assert.LessOrEqual(t, split.DefaultItems, split.MaxItems)

	restyle, ok := table[KindVideoToVideo]
	require.True(t, ok)
	assert.False(t, restyle.SupportsSplit)
	assert.Equal(t, 1, restyle.MaxItems)
}

func TestItemBoundsAreConsistent(t *testing.T) {
	table := MustLoad()
	for kind, p := range table {
		assert.LessOrEqual(t, p.MinItems, p.MaxItems, "kind %s", kind)
		assert.GreaterOrEqual(t, p.DefaultItems, p.MinItems, "kind %s", kind)
		assert.LessOrEqual(t, p.DefaultItems, p.MaxItems, "kind %s", kind)
	}
}

func TestKindsStableOrder(t *testing.T) {
	table := MustLoad()
	kinds := Kinds(table)
	require.Len(t, kinds, len(table))
	for i := 1; i < len(kinds); i++ {
		assert.Less(t, string(kinds[i-1]), string(kinds[i]))
	}
}
