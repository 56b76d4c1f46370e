package utils

import "hash/fnv"

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// HashPick returns a stable index in [0, n) for the given key. Used wherever
// the pipeline needs a reproducible choice instead of randomness.
func HashPick(key string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(HashStringToUint64(key) % uint64(n))
}
