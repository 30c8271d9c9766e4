// Package compress measures the compressed size of ordered file
// sequences by streaming them through a compression transform into a
// counting sink. The compressed bytes are counted as they are emitted
// and never stored.
package compress

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/harrison/shrinkrate/internal/models"
)

// Algorithm identifies a supported compression transform.
type Algorithm string

const (
	Zstd   Algorithm = "zstd"
	Gzip   Algorithm = "gzip"
	LZ4    Algorithm = "lz4"
	Brotli Algorithm = "brotli"
	Snappy Algorithm = "snappy"
)

// DefaultAlgorithm is the transform used when none is configured.
const DefaultAlgorithm = Zstd

// ParseAlgorithm parses an algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case Zstd, Gzip, LZ4, Brotli, Snappy:
		return Algorithm(name), nil
	default:
		return "", fmt.Errorf("unsupported compression algorithm: %q", name)
	}
}

// Options configures the compression transform.
type Options struct {
	// Algorithm selects the transform. Empty selects DefaultAlgorithm.
	Algorithm Algorithm
	// Workers is the transform-internal parallelism for algorithms
	// that support it (zstd, lz4). Zero leaves the library default.
	Workers int
	// Level is the compression-effort preset in the algorithm's native
	// scale. Zero selects the algorithm's maximum effort.
	Level int
	// Separator inserts a single newline byte between concatenated
	// files.
	Separator bool
}

// separator is the optional byte written between files.
var separator = []byte{'\n'}

// countingWriter counts bytes written to it and discards them.
type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// Measurer runs file sequences through a streaming transform and
// reports the total compressed byte count for the concatenation.
type Measurer struct {
	opts Options
}

// NewMeasurer validates opts and creates a measurer.
func NewMeasurer(opts Options) (*Measurer, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = DefaultAlgorithm
	}
	if _, err := ParseAlgorithm(string(opts.Algorithm)); err != nil {
		return nil, err
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("worker count must not be negative: %d", opts.Workers)
	}
	return &Measurer{opts: opts}, nil
}

// Algorithm returns the configured transform name.
func (m *Measurer) Algorithm() Algorithm {
	return m.opts.Algorithm
}

// Measure concatenates the files in the given order through the
// transform and returns the compressed byte count. Writes block while
// the transform's input buffer is full, so the producer never buffers
// the stream beyond what the transform accepts. An empty sequence
// still yields the transform's header-only output size. Any transform
// error is fatal for the round.
func (m *Measurer) Measure(files []models.File) (int64, error) {
	sink := &countingWriter{}
	transform, err := newTransform(m.opts, sink)
	if err != nil {
		return 0, fmt.Errorf("create %s transform: %w", m.opts.Algorithm, err)
	}

	for i, f := range files {
		if m.opts.Separator && i > 0 {
			if _, err := transform.Write(separator); err != nil {
				transform.Close()
				return 0, fmt.Errorf("compress separator: %w", err)
			}
		}
		if _, err := transform.Write(f.Content); err != nil {
			transform.Close()
			return 0, fmt.Errorf("compress %s: %w", f.Path, err)
		}
	}

	if err := transform.Close(); err != nil {
		return 0, fmt.Errorf("finish %s stream: %w", m.opts.Algorithm, err)
	}

	return sink.n, nil
}

// newTransform creates the configured compression transform writing
// its output to w.
func newTransform(opts Options, w io.Writer) (io.WriteCloser, error) {
	switch opts.Algorithm {
	case Zstd:
		return newZstdTransform(opts, w)
	case Gzip:
		return gzip.NewWriterLevel(w, gzipLevel(opts.Level))
	case LZ4:
		return newLZ4Transform(opts, w)
	case Brotli:
		return brotli.NewWriterLevel(w, brotliLevel(opts.Level)), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %q", opts.Algorithm)
	}
}

// newZstdTransform builds the zstd encoder. The stream carries no
// integrity checksum: the compressed bytes are only ever counted,
// never decoded or persisted.
func newZstdTransform(opts Options, w io.Writer) (io.WriteCloser, error) {
	level := zstd.SpeedBestCompression
	if opts.Level > 0 {
		level = zstd.EncoderLevelFromZstd(opts.Level)
	}

	eopts := []zstd.EOption{
		zstd.WithEncoderCRC(false),
		zstd.WithEncoderLevel(level),
	}
	if opts.Workers > 0 {
		eopts = append(eopts, zstd.WithEncoderConcurrency(opts.Workers))
	}

	return zstd.NewWriter(w, eopts...)
}

func newLZ4Transform(opts Options, w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)

	lopts := []lz4.Option{lz4.CompressionLevelOption(lz4Level(opts.Level))}
	if opts.Workers > 0 {
		lopts = append(lopts, lz4.ConcurrencyOption(opts.Workers))
	}
	if err := zw.Apply(lopts...); err != nil {
		return nil, err
	}

	return zw, nil
}

// gzipLevel maps the effort preset to a gzip level, defaulting to and
// capping at best compression.
func gzipLevel(level int) int {
	if level <= 0 || level > gzip.BestCompression {
		return gzip.BestCompression
	}
	return level
}

// brotliLevel maps the effort preset to a brotli quality level.
func brotliLevel(level int) int {
	if level <= 0 || level > brotli.BestCompression {
		return brotli.BestCompression
	}
	return level
}

// lz4Level maps the effort preset to an lz4 compression level.
func lz4Level(level int) lz4.CompressionLevel {
	switch level {
	case 1:
		return lz4.Level1
	case 2:
		return lz4.Level2
	case 3:
		return lz4.Level3
	case 4:
		return lz4.Level4
	case 5:
		return lz4.Level5
	case 6:
		return lz4.Level6
	case 7:
		return lz4.Level7
	case 8:
		return lz4.Level8
	default:
		return lz4.Level9
	}
}
