package random

import (
	"crypto/rand"
	"math/big"
)

// Random supplies the randomness used when pairing players
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// CoinFlip returns true or false with equal probability
	CoinFlip() bool
}

// CryptoRandom implements Random on crypto/rand
type CryptoRandom struct{}

// New creates a CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a uniformly distributed int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand does not fail on supported platforms
		return 0
	}
	return int(v.Int64())
}

// CoinFlip returns true for heads
func (r *CryptoRandom) CoinFlip() bool {
	return r.Intn(2) == 1
}
