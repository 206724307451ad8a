package gitlet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rybkr/gitlet/internal/fsio"
)

// Staging is the pending-change buffer between commits: paths staged for
// addition/modification (Added) and paths staged for removal (Removed).
// A path never appears in both. The HEAD-derived `tracked` view used by
// Add/Remove/CommitDrain is passed in by the caller rather than stored
// here — it is a transient projection of the current branch's tip, not
// part of the staging area's own persisted state.
type Staging struct {
	Added   map[string]ID
	Removed map[string]bool
}

const indexFileName = "index"

func newStaging() *Staging {
	return &Staging{Added: map[string]ID{}, Removed: map[string]bool{}}
}

// LoadStaging reads the index file from gitDir. A missing index means
// nothing has ever been staged and yields an empty Staging, not an error.
func LoadStaging(gitDir string, retrier fsio.Retrier) (*Staging, error) {
	data, err := retrier.ReadFile(filepath.Join(gitDir, indexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return newStaging(), nil
		}
		return nil, fmt.Errorf("gitlet: reading index: %w", err)
	}
	s := newStaging()
	if err := gobDecode(data, s); err != nil {
		return nil, fmt.Errorf("gitlet: decoding index: %w", err)
	}
	return s, nil
}

// Save persists the staging area to gitDir's index file.
func (s *Staging) Save(gitDir string, retrier fsio.Retrier) error {
	data, err := gobEncode(s)
	if err != nil {
		return fmt.Errorf("gitlet: encoding index: %w", err)
	}
	return retrier.WriteFileAtomic(filepath.Join(gitDir, indexFileName), data, 0o644)
}

// IsClean reports whether nothing is staged.
func (s *Staging) IsClean() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0
}

// Clear empties both the added and removed sets.
func (s *Staging) Clear() {
	s.Added = map[string]ID{}
	s.Removed = map[string]bool{}
}

// Add stages path for addition, given the store to persist the new blob
// into and tracked, the HEAD commit's snapshot. It reports whether the
// staging area changed.
func (s *Staging) Add(store *Store, tracked map[string]ID, path string) (bool, error) {
	blob, err := NewBlobFromFile(path)
	if err != nil {
		return false, err
	}

	if headID, ok := tracked[path]; ok && headID == blob.ID {
		_, inAdded := s.Added[path]
		_, inRemoved := s.Removed[path]
		delete(s.Added, path)
		delete(s.Removed, path)
		return inAdded || inRemoved, nil
	}

	if err := blob.Save(store); err != nil {
		return false, err
	}
	s.Added[path] = blob.ID
	delete(s.Removed, path)
	return true, nil
}

// Remove stages path for removal, given tracked, the HEAD commit's
// snapshot. If path is staged for addition, it is simply unstaged, whether
// or not HEAD tracks it. Otherwise, if path is tracked by HEAD, it is
// marked removed and deleted from the working tree if still present. It
// reports whether the staging area changed.
func (s *Staging) Remove(tracked map[string]ID, path string) (bool, error) {
	if _, ok := s.Added[path]; ok {
		delete(s.Added, path)
		return true, nil
	}

	if _, ok := tracked[path]; ok {
		s.Removed[path] = true
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				return false, fmt.Errorf("gitlet: removing %s: %w", path, err)
			}
		}
		return true, nil
	}

	return false, nil
}

// CommitDrain computes the tracked map a new commit should carry: start
// from tracked (the pre-commit HEAD snapshot), apply every Added
// override, delete every Removed path, then clear the staging area.
func (s *Staging) CommitDrain(tracked map[string]ID) map[string]ID {
	result := make(map[string]ID, len(tracked)+len(s.Added))
	for k, v := range tracked {
		result[k] = v
	}
	for k, v := range s.Added {
		result[k] = v
	}
	for k := range s.Removed {
		delete(result, k)
	}
	s.Clear()
	return result
}
