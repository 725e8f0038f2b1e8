package util

import (
	"github.com/google/uuid"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomSuffix returns n lowercase base36 characters drawn from a random
// UUID. n is capped at 16.
func RandomSuffix(n int) string {
	id := uuid.New()
	n = min(max(n, 0), len(id))
	out := make([]byte, n)
	for i := range out {
		out[i] = base36[int(id[i])%len(base36)]
	}
	return string(out)
}
