// Package fsio provides the durable filesystem primitives the engine
// builds on: retrying reads/writes, write-then-rename for atomic object
// and ref updates, aggregated multi-file cleanup, and bounded-concurrency
// working-tree scans. None of it holds state of its own; every call acts
// directly on the filesystem rooted at the caller-supplied paths.
package fsio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Retrier bounds retry attempts and backoff for transient filesystem
// errors. A zero value retries zero times (Attempts defaults to 1 call).
type Retrier struct {
	Attempts int
	BackoffMS int
}

func (r Retrier) backoff() retry.Backoff {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	ms := r.BackoffMS
	if ms < 1 {
		ms = 1
	}
	b := retry.NewConstant(time.Duration(ms) * time.Millisecond)
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// ReadFile reads path, retrying transient failures.
func (r Retrier) ReadFile(path string) ([]byte, error) {
	var data []byte
	err := retry.Do(context.Background(), r.backoff(), func(ctx context.Context) error {
		b, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled, under the repo's metadata dir
		if err != nil {
			if os.IsNotExist(err) {
				return err // permanent: do not retry a missing file
			}
			return retry.RetryableError(err)
		}
		data = b
		return nil
	})
	return data, err
}

// WriteFileAtomic writes data to path by first writing to a sibling temp
// file and renaming it into place, so a concurrent reader (or a crash
// mid-write) never observes a partially written object or ref. Shard
// directories are created as needed.
func (r Retrier) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fsio: creating directory %s: %w", dir, err)
	}

	tmp := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())

	return retry.Do(context.Background(), r.backoff(), func(ctx context.Context) error {
		if err := os.WriteFile(tmp, data, perm); err != nil {
			return retry.RetryableError(fmt.Errorf("fsio: writing temp file %s: %w", tmp, err))
		}
		if err := os.Rename(tmp, path); err != nil {
			return retry.RetryableError(fmt.Errorf("fsio: renaming %s to %s: %w", tmp, path, err))
		}
		return nil
	})
}

// RemoveAll removes every path in paths, continuing past individual
// failures and returning every error encountered, aggregated via multierr,
// rather than aborting on the first one. Used when clearing the working
// tree ahead of a checkout/reset/merge restore.
func RemoveAll(paths []string) error {
	var errs error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, fmt.Errorf("removing %s: %w", p, err))
		}
	}
	return errs
}

// HashTask is one unit of work for ScanWorkingTree: compute some
// caller-defined digest for the file at Path.
type HashTask struct {
	Path string
	Hash func(path string) (string, error)
}

// HashResult is the outcome of one HashTask.
type HashResult struct {
	Path string
	Sum  string
}

// ScanWorkingTree runs each task's Hash function with bounded concurrency
// and returns one HashResult per task. The result order matches the input
// order, so callers are unaffected by the scan's internal scheduling (in
// this module, status sorts basenames before printing and the
// checkout/reset/merge safety check looks results up by path).
func ScanWorkingTree(concurrency int, tasks []HashTask) ([]HashResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]HashResult, len(tasks))
	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			sum, err := t.Hash(t.Path)
			if err != nil {
				return fmt.Errorf("hashing %s: %w", t.Path, err)
			}
			results[i] = HashResult{Path: t.Path, Sum: sum}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
