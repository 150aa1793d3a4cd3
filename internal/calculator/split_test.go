package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualSplit_RemainderGoesToFirstMember(t *testing.T) {
	split, err := EqualSplit(d("100"), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.True(t, split["a"].Equal(d("33.34")), "a got %s", split["a"])
	assert.True(t, split["b"].Equal(d("33.33")), "b got %s", split["b"])
	assert.True(t, split["c"].Equal(d("33.33")), "c got %s", split["c"])
	assert.True(t, SumSplit(split).Equal(d("100")))
}

func TestEqualSplit_Even(t *testing.T) {
	split, err := EqualSplit(d("90"), []string{"a", "b", "c"})
	require.NoError(t, err)
	for id, share := range split {
		assert.True(t, share.Equal(d("30")), "%s got %s", id, share)
	}
}

func TestEqualSplit_NoMembers(t *testing.T) {
	_, err := EqualSplit(d("10"), nil)
	assert.Error(t, err)
}
