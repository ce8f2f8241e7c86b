package scoring

import "math/rand"

// PickWithoutReplacement draws n distinct elements from pool, uniformly at
// random, using the supplied source. Returns nil if the pool is too small.
// The input slice is not modified.
func PickWithoutReplacement(pool []string, n int, rng *rand.Rand) []string {
	if n < 0 || len(pool) < n {
		return nil
	}
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}
