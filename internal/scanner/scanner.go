// Package scanner enumerates the eligible files of a source tree.
//
// The scanner walks a root directory depth-first, maintaining an
// explicit stack of ignore rule sets: entering a directory that
// contains an ignore file pushes its rules for the duration of that
// subtree, leaving pops them. Each regular file is read fully through
// the bounded content cache and kept only if it is not ignored and its
// content is strictly valid UTF-8. Per-file read failures are collected
// and logged but never abort the scan.
package scanner

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/harrison/shrinkrate/internal/cache"
	"github.com/harrison/shrinkrate/internal/ignore"
	"github.com/harrison/shrinkrate/internal/models"
)

// DefaultIgnoreFile is the per-directory ignore pattern file name.
const DefaultIgnoreFile = ".gitignore"

// Logger receives per-file notices during the scan.
type Logger interface {
	LogDebug(message string)
	LogWarn(message string)
}

// Options configures the directory scan.
type Options struct {
	// IgnoreFile is the name of the per-directory ignore pattern file.
	// Empty selects DefaultIgnoreFile.
	IgnoreFile string
	// Cache is the bounded content cache files are read through. Nil
	// creates a cache with the default capacity.
	Cache *cache.Cache
	// IncludeHidden disables the pruning of dot-directories.
	IncludeHidden bool
	// Logger receives inclusion/exclusion notices. Nil discards them.
	Logger Logger
}

// Result contains the outcome of a scan.
type Result struct {
	// Files are the eligible files in traversal order.
	Files []models.File
	// UncompressedSize is the running total of eligible file bytes.
	UncompressedSize int64
	// Errors are the non-fatal per-file errors encountered.
	Errors []error
	// HiddenDirs are the dot-directories pruned from the walk, so the
	// caller can report why their contents are absent from the totals.
	HiddenDirs []string
}

type scanner struct {
	ignoreFile    string
	cache         *cache.Cache
	includeHidden bool
	logger        Logger
	chain         ignore.Chain
	result        *Result
}

// Scan walks root and returns its eligible files. Only a missing or
// unreadable root is a fatal error; everything below it degrades to
// per-file errors in the result.
func Scan(root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	s := &scanner{
		ignoreFile:    opts.IgnoreFile,
		cache:         opts.Cache,
		includeHidden: opts.IncludeHidden,
		logger:        opts.Logger,
		result:        &Result{},
	}
	if s.ignoreFile == "" {
		s.ignoreFile = DefaultIgnoreFile
	}
	if s.cache == nil {
		s.cache = cache.New(0)
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}

	s.walk(root, "")
	return s.result, nil
}

// walk processes one directory. dir is the filesystem path, rel the
// slash-separated path relative to the scan root ("" for the root).
func (s *scanner) walk(dir, rel string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.result.Errors = append(s.result.Errors, fmt.Errorf("error reading directory %s: %w", dir, err))
		s.logger.LogWarn(fmt.Sprintf("Skipping directory %s: %v", dir, err))
		return
	}

	// An unreadable or malformed ignore file simply contributes no
	// rules here.
	if data, err := s.cache.ReadFile(filepath.Join(dir, s.ignoreFile)); err == nil {
		rs, err := ignore.Parse(rel, data)
		if err != nil {
			s.logger.LogWarn(fmt.Sprintf("Skipping ignore rules in %s: %v", dir, err))
		} else {
			s.chain.Push(rs)
			defer s.chain.Pop()
		}
	}

	for _, entry := range entries {
		name := entry.Name()
		childRel := path.Join(rel, name)

		if entry.IsDir() {
			if !s.includeHidden && strings.HasPrefix(name, ".") {
				s.result.HiddenDirs = append(s.result.HiddenDirs, childRel)
				s.logger.LogDebug(fmt.Sprintf("Skipping hidden directory %s", childRel))
				continue
			}
			// Ignored directories are pruned, not just filtered:
			// nothing below them is visited.
			if s.chain.Ignored(childRel, true) {
				s.logger.LogDebug(fmt.Sprintf("Ignoring directory %s", childRel))
				continue
			}
			s.walk(filepath.Join(dir, name), childRel)
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}
		if s.chain.Ignored(childRel, false) {
			s.logger.LogDebug(fmt.Sprintf("Ignoring %s", childRel))
			continue
		}

		content, err := s.cache.ReadFile(filepath.Join(dir, name))
		if err != nil {
			s.result.Errors = append(s.result.Errors, fmt.Errorf("error reading %s: %w", childRel, err))
			s.logger.LogWarn(fmt.Sprintf("Excluding %s: %v", childRel, err))
			continue
		}

		// Binary content is skipped silently, without an error.
		if !isValidText(content) {
			s.logger.LogDebug(fmt.Sprintf("Skipping %s: not valid text", childRel))
			continue
		}

		s.result.Files = append(s.result.Files, models.File{Path: childRel, Content: content})
		s.result.UncompressedSize += int64(len(content))
		s.logger.LogDebug(fmt.Sprintf("Including %s (%d bytes)", childRel, len(content)))
	}
}

// isValidText reports whether content decodes as strictly valid UTF-8.
// Any invalid byte sequence, including a truncated multi-byte sequence
// at the end of the buffer, disqualifies the content.
func isValidText(content []byte) bool {
	return utf8.Valid(content)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogWarn(string)  {}
