package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickWithoutReplacementDeterministicForSeed(t *testing.T) {
	pool := []string{"p1", "p2", "p3", "p4", "p5"}

	first := PickWithoutReplacement(pool, 2, rand.New(rand.NewSource(42)))
	second := PickWithoutReplacement(pool, 2, rand.New(rand.NewSource(42)))

	assert.Equal(t, first, second)
}

func TestPickWithoutReplacementDistinctSubset(t *testing.T) {
	pool := []string{"p1", "p2", "p3", "p4"}
	rng := rand.New(rand.NewSource(7))

	picked := PickWithoutReplacement(pool, 3, rng)
	require.Len(t, picked, 3)

	seen := make(map[string]bool)
	poolSet := map[string]bool{"p1": true, "p2": true, "p3": true, "p4": true}
	for _, id := range picked {
		assert.False(t, seen[id], "picked %s twice", id)
		assert.True(t, poolSet[id], "picked %s not in pool", id)
		seen[id] = true
	}
}

func TestPickWithoutReplacementPoolTooSmall(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Nil(t, PickWithoutReplacement([]string{"p1"}, 2, rng))
	assert.Nil(t, PickWithoutReplacement(nil, 1, rng))
}

func TestPickWithoutReplacementDoesNotMutatePool(t *testing.T) {
	pool := []string{"p1", "p2", "p3"}
	PickWithoutReplacement(pool, 2, rand.New(rand.NewSource(3)))
	assert.Equal(t, []string{"p1", "p2", "p3"}, pool)
}
