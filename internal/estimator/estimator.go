// Package estimator implements time-boxed adaptive sampling: it
// repeatedly shuffles the eligible file list, measures the compressed
// size of the resulting concatenation, and aggregates the samples into
// a mean and population standard deviation.
package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/shrinkrate/internal/models"
)

// DefaultBudget is the sampling time budget when none is configured.
const DefaultBudget = 3 * time.Second

// Shuffler produces a fresh permutation of a file list.
type Shuffler interface {
	Shuffle(files []models.File) []models.File
}

// Measurer produces one compressed-size sample from an ordered file
// sequence.
type Measurer interface {
	Measure(files []models.File) (int64, error)
}

// Logger receives per-round progress notices.
type Logger interface {
	LogDebug(message string)
}

// Estimator runs sampling rounds until a time budget elapses. Rounds
// are strictly sequential: a round's shuffle starts only after the
// previous round's measurement completed and its sample was recorded.
type Estimator struct {
	shuffler Shuffler
	measurer Measurer
	budget   time.Duration
	logger   Logger
}

// New creates an estimator. A budget below zero is treated as zero,
// which still executes exactly one round. A nil logger discards the
// per-round notices.
func New(shuffler Shuffler, measurer Measurer, budget time.Duration, logger Logger) *Estimator {
	if budget < 0 {
		budget = 0
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Estimator{
		shuffler: shuffler,
		measurer: measurer,
		budget:   budget,
		logger:   logger,
	}
}

// Run collects one compressed-size sample per round until the time
// budget elapses. The exit condition is checked after each round, so
// the round that crosses the budget is always included and at least
// one round always executes. A measurement failure aborts the whole
// run; there are no retries. The context is only consulted between
// rounds — a round in progress is not interruptible.
func (e *Estimator) Run(ctx context.Context, files []models.File) ([]int64, error) {
	start := time.Now()
	var samples []int64

	for {
		permutation := e.shuffler.Shuffle(files)
		size, err := e.measurer.Measure(permutation)
		if err != nil {
			return nil, fmt.Errorf("sampling round %d: %w", len(samples)+1, err)
		}
		samples = append(samples, size)

		elapsed := time.Since(start)
		e.logger.LogDebug(fmt.Sprintf("Round %d: %d compressed bytes (%s elapsed)",
			len(samples), size, elapsed.Round(time.Millisecond)))

		if e.budget <= 0 || elapsed > e.budget {
			return samples, nil
		}
		if err := ctx.Err(); err != nil {
			return samples, err
		}
	}
}

// Estimate runs the sampling loop and aggregates the samples into a
// result. Root, algorithm, and uncompressed size are left for the
// caller to fill in.
func (e *Estimator) Estimate(ctx context.Context, files []models.File) (*models.Result, error) {
	start := time.Now()

	samples, err := e.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	mean, stddev := Aggregate(samples)
	return &models.Result{
		Samples:  samples,
		Mean:     mean,
		StdDev:   stddev,
		Duration: time.Since(start),
	}, nil
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
