package shuffle

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrison/shrinkrate/internal/models"
)

func makeFiles(n int) []models.File {
	files := make([]models.File, n)
	for i := range files {
		files[i] = models.File{
			Path:    fmt.Sprintf("file-%03d.txt", i),
			Content: []byte(fmt.Sprintf("content %d", i)),
		}
	}
	return files
}

func paths(files []models.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestShuffleIsPermutation(t *testing.T) {
	files := makeFiles(50)
	shuffled := New(42).Shuffle(files)

	assert.Len(t, shuffled, len(files))

	want := paths(files)
	got := paths(shuffled)
	sort.Strings(got)
	assert.Equal(t, want, got, "shuffle must preserve the exact file set")
}

func TestShuffleDoesNotModifyInput(t *testing.T) {
	files := makeFiles(20)
	original := paths(files)

	New(42).Shuffle(files)
	assert.Equal(t, original, paths(files))
}

func TestShuffleDeterministicForSeed(t *testing.T) {
	files := makeFiles(30)

	first := New(7).Shuffle(files)
	second := New(7).Shuffle(files)
	assert.Equal(t, paths(first), paths(second))
}

func TestShuffleVariesAcrossRounds(t *testing.T) {
	files := makeFiles(30)
	engine := NewDefault()

	first := engine.Shuffle(files)
	second := engine.Shuffle(files)
	assert.NotEqual(t, paths(first), paths(second),
		"consecutive rounds should produce different orderings for 30 files")
}

func TestShuffleEmptyAndSingle(t *testing.T) {
	engine := NewDefault()

	assert.Empty(t, engine.Shuffle(nil))

	single := makeFiles(1)
	assert.Equal(t, paths(single), paths(engine.Shuffle(single)))
}
