package gitlet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rybkr/gitlet/internal/fsio"
)

// Refs manages the branch-name -> tip-commit-id mapping and the HEAD
// symbolic reference to the current branch. There is no detached HEAD:
// HEAD always names a branch, and that branch always exists.
type Refs struct {
	gitDir  string
	retrier fsio.Retrier
}

// NewRefs returns a Refs rooted at gitDir.
func NewRefs(gitDir string, retrier fsio.Retrier) *Refs {
	return &Refs{gitDir: gitDir, retrier: retrier}
}

func (r *Refs) headPath() string          { return filepath.Join(r.gitDir, "HEAD") }
func (r *Refs) branchPath(name string) string {
	return filepath.Join(r.gitDir, "refs", "heads", name)
}

// BranchTip returns the tip commit id of name.
func (r *Refs) BranchTip(name string) (ID, error) {
	data, err := r.retrier.ReadFile(r.branchPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", NewError(NoSuchBranch)
		}
		return "", fmt.Errorf("gitlet: reading branch %s: %w", name, err)
	}
	return ID(strings.TrimSpace(string(data))), nil
}

// SetBranchTip advances (or creates) name's tip to id.
func (r *Refs) SetBranchTip(name string, id ID) error {
	return r.retrier.WriteFileAtomic(r.branchPath(name), []byte(string(id)+"\n"), 0o644)
}

// BranchExists reports whether name has a ref file.
func (r *Refs) BranchExists(name string) bool {
	_, err := os.Stat(r.branchPath(name))
	return err == nil
}

// CurrentBranch returns the branch named by HEAD.
func (r *Refs) CurrentBranch() (string, error) {
	data, err := r.retrier.ReadFile(r.headPath())
	if err != nil {
		return "", fmt.Errorf("gitlet: reading HEAD: %w", err)
	}
	line := strings.TrimSpace(string(data))
	const prefix = "ref: refs/heads/"
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("gitlet: malformed HEAD: %q", line)
	}
	return strings.TrimPrefix(line, prefix), nil
}

// SetCurrentBranch points HEAD at name.
func (r *Refs) SetCurrentBranch(name string) error {
	return r.retrier.WriteFileAtomic(r.headPath(), []byte("ref: refs/heads/"+name+"\n"), 0o644)
}

// ListBranches returns every branch name in lexicographic order.
func (r *Refs) ListBranches() ([]string, error) {
	dir := filepath.Join(r.gitDir, "refs", "heads")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("gitlet: listing branches: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// DeleteBranch removes name's ref file.
func (r *Refs) DeleteBranch(name string) error {
	if err := os.Remove(r.branchPath(name)); err != nil {
		return fmt.Errorf("gitlet: removing branch %s: %w", name, err)
	}
	return nil
}
