package models

import "time"

// Result represents the aggregate outcome of one estimation run
type Result struct {
	Root             string        // Absolute path of the scanned root directory
	Algorithm        string        // Compression algorithm used for sampling
	UncompressedSize int64         // Sum of byte lengths of all eligible files
	Samples          []int64       // One compressed size per sampling round
	Mean             float64       // Arithmetic mean of the samples
	StdDev           float64       // Population standard deviation of the samples
	Duration         time.Duration // Wall-clock time spent sampling
}

// SampleCount returns the number of sampling rounds that were executed.
func (r *Result) SampleCount() int {
	return len(r.Samples)
}
