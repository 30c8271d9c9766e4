// Package shuffle produces uniform random permutations of file lists.
package shuffle

import (
	"math/rand"

	"github.com/harrison/shrinkrate/internal/models"
)

// DefaultSeed is the fixed seed for the process-lifetime generator.
// Sampling only needs variety across rounds, not across invocations,
// so a constant seed keeps runs of the same process reproducible.
const DefaultSeed int64 = 1

// Engine holds a seeded pseudo-random source and produces unbiased
// permutations with the Fisher-Yates algorithm. An Engine is not safe
// for concurrent use; sampling rounds are strictly sequential.
type Engine struct {
	rng *rand.Rand
}

// New creates an engine seeded with seed.
func New(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates an engine seeded with DefaultSeed.
func NewDefault() *Engine {
	return New(DefaultSeed)
}

// Shuffle returns a fresh uniformly random permutation of files. The
// input slice is not modified.
func (e *Engine) Shuffle(files []models.File) []models.File {
	out := make([]models.File, len(files))
	copy(out, files)
	e.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
