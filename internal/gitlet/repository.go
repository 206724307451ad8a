// Package gitlet is the VCS data engine: the content-addressed object
// store, the staging area, the branch/HEAD reference model, and the
// repository operations that mutate them (init, add, rm, commit, log,
// global-log, find, status, checkout, branch, rm-branch, reset, merge).
package gitlet

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rybkr/gitlet/internal/config"
	"github.com/rybkr/gitlet/internal/fsio"
)

const (
	metadataDirName = ".gitlet"
	defaultBranch   = "master"
)

// Repository is the engine's top-level handle. Its lazily-loaded fields
// (headBranch, headCommit, staging) are computed on first demand within
// one invocation and memoized for the remainder of it — per design,
// pure-static operations (global-log, find) never force HEAD to be
// loaded, but every other command does.
type Repository struct {
	workDir string
	gitDir  string

	store   *Store
	refs    *Refs
	retrier fsio.Retrier
	cfg     config.Config

	headBranch string
	headCommit *Commit
	staging    *Staging
}

// Open returns a Repository handle rooted at workDir. It does not require
// the repository to be initialized; call requireInitialized (or Init) for
// that.
func Open(workDir string) (*Repository, error) {
	gitDir := filepath.Join(workDir, metadataDirName)

	cfg, err := config.Load(gitDir)
	if err != nil {
		return nil, err
	}
	retrier := fsio.Retrier{Attempts: cfg.IO.RetryAttempts, BackoffMS: cfg.IO.RetryBackoffMS}

	return &Repository{
		workDir: workDir,
		gitDir:  gitDir,
		store:   NewStore(gitDir, retrier),
		refs:    NewRefs(gitDir, retrier),
		retrier: retrier,
		cfg:     cfg,
	}, nil
}

// IsInitialized reports whether the metadata directory exists.
func (r *Repository) IsInitialized() bool {
	_, err := os.Stat(r.gitDir)
	return err == nil
}

func (r *Repository) requireInitialized() error {
	if !r.IsInitialized() {
		return NewError(NotInitialized)
	}
	return nil
}

// resolvePath canonicalizes name to an absolute path: if name is already
// absolute it is used as-is, otherwise it is resolved under the working
// root. No subdirectory tracking: callers pass the basename of a file
// directly under the working root.
func (r *Repository) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(r.workDir, name)
}

// Init creates the repository skeleton and the initial commit.
func (r *Repository) Init() error {
	if r.IsInitialized() {
		return NewError(AlreadyInitialized)
	}

	if err := os.MkdirAll(filepath.Join(r.gitDir, "objects"), 0o755); err != nil {
		return fmt.Errorf("gitlet: creating objects dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(r.gitDir, "refs", "heads"), 0o755); err != nil {
		return fmt.Errorf("gitlet: creating refs dir: %w", err)
	}

	initial := NewInitialCommit()
	if err := initial.Save(r.store); err != nil {
		return err
	}
	if err := r.refs.SetBranchTip(defaultBranch, initial.ID); err != nil {
		return err
	}
	if err := r.refs.SetCurrentBranch(defaultBranch); err != nil {
		return err
	}

	if err := config.Save(r.gitDir, config.Default()); err != nil {
		return err
	}

	r.headBranch = defaultBranch
	r.headCommit = initial
	return nil
}

// HeadBranch returns the branch named by HEAD, memoized per invocation.
func (r *Repository) HeadBranch() (string, error) {
	if r.headBranch != "" {
		return r.headBranch, nil
	}
	b, err := r.refs.CurrentBranch()
	if err != nil {
		return "", err
	}
	r.headBranch = b
	return b, nil
}

// HeadCommitID returns the tip commit id of the current branch.
func (r *Repository) HeadCommitID() (ID, error) {
	branch, err := r.HeadBranch()
	if err != nil {
		return "", err
	}
	return r.refs.BranchTip(branch)
}

// HeadCommit returns the current branch's tip commit, memoized per
// invocation.
func (r *Repository) HeadCommit() (*Commit, error) {
	if r.headCommit != nil {
		return r.headCommit, nil
	}
	id, err := r.HeadCommitID()
	if err != nil {
		return nil, err
	}
	c, err := LoadCommit(r.store, id)
	if err != nil {
		return nil, err
	}
	r.headCommit = c
	return c, nil
}

// Staging returns the current staging area, memoized per invocation.
func (r *Repository) Staging() (*Staging, error) {
	if r.staging != nil {
		return r.staging, nil
	}
	s, err := LoadStaging(r.gitDir, r.retrier)
	if err != nil {
		return nil, err
	}
	r.staging = s
	return s, nil
}

func (r *Repository) saveStaging() error {
	return r.staging.Save(r.gitDir, r.retrier)
}

// Add stages name for addition.
func (r *Repository) Add(name string) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	path := r.resolvePath(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return NewError(FileMissing)
		}
		return fmt.Errorf("gitlet: statting %s: %w", path, err)
	}

	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	staging, err := r.Staging()
	if err != nil {
		return err
	}

	changed, err := staging.Add(r.store, head.Tracked, path)
	if err != nil {
		return err
	}
	if changed {
		return r.saveStaging()
	}
	return nil
}

// Rm stages name for removal.
func (r *Repository) Rm(name string) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	path := r.resolvePath(name)

	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	staging, err := r.Staging()
	if err != nil {
		return err
	}

	changed, err := staging.Remove(head.Tracked, path)
	if err != nil {
		return err
	}
	if !changed {
		return NewError(NothingToRemove)
	}
	return r.saveStaging()
}

// Commit drains the staging area into a new ordinary commit with a
// single parent (the current HEAD tip) and advances the current branch.
func (r *Repository) Commit(message string) error {
	return r.commitWithParents(message, nil)
}

func (r *Repository) commitWithParents(message string, extraParents []ID) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	if message == "" {
		return NewError(EmptyCommitMessage)
	}

	staging, err := r.Staging()
	if err != nil {
		return err
	}
	if staging.IsClean() {
		return NewError(NoChanges)
	}

	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	headID, err := r.HeadCommitID()
	if err != nil {
		return err
	}

	tracked := staging.CommitDrain(head.Tracked)
	parents := append([]ID{headID}, extraParents...)

	commit := NewCommit(message, parents, tracked)
	if err := commit.Save(r.store); err != nil {
		return err
	}
	if err := r.saveStaging(); err != nil {
		return err
	}

	branch, err := r.HeadBranch()
	if err != nil {
		return err
	}
	if err := r.refs.SetBranchTip(branch, commit.ID); err != nil {
		return err
	}

	r.headCommit = commit
	return nil
}

// Log follows the first-parent chain from HEAD back to the initial
// commit.
func (r *Repository) Log() (string, error) {
	if err := r.requireInitialized(); err != nil {
		return "", err
	}
	cur, err := r.HeadCommitID()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for cur != "" {
		c, err := LoadCommit(r.store, cur)
		if err != nil {
			return "", err
		}
		sb.WriteString(c.LogEntry())
		sb.WriteString("\n")
		if len(c.Parents) == 0 {
			break
		}
		cur = c.Parents[0]
	}
	return sb.String(), nil
}

// allReachableCommits traverses every commit reachable from any branch
// tip, deduplicated, in reverse-chronological order by timestamp with a
// stable tie-break on id.
func (r *Repository) allReachableCommits() ([]*Commit, error) {
	branches, err := r.refs.ListBranches()
	if err != nil {
		return nil, err
	}

	visited := map[ID]bool{}
	var stack []ID
	for _, b := range branches {
		tip, err := r.refs.BranchTip(b)
		if err != nil {
			return nil, err
		}
		stack = append(stack, tip)
	}

	var commits []*Commit
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		c, err := LoadCommit(r.store, id)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
		stack = append(stack, c.Parents...)
	}

	sort.Slice(commits, func(i, j int) bool {
		if !commits[i].Timestamp.Equal(commits[j].Timestamp) {
			return commits[i].Timestamp.After(commits[j].Timestamp)
		}
		return commits[i].ID < commits[j].ID
	})
	return commits, nil
}

// GlobalLog prints every commit reachable from any branch tip, in
// reverse-chronological order.
func (r *Repository) GlobalLog() (string, error) {
	if err := r.requireInitialized(); err != nil {
		return "", err
	}
	commits, err := r.allReachableCommits()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, c := range commits {
		sb.WriteString(c.LogEntry())
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Find prints the ids of every commit whose message equals message.
func (r *Repository) Find(message string) (string, error) {
	if err := r.requireInitialized(); err != nil {
		return "", err
	}
	commits, err := r.allReachableCommits()
	if err != nil {
		return "", err
	}

	var ids []string
	for _, c := range commits {
		if c.Message == message {
			ids = append(ids, string(c.ID))
		}
	}
	if len(ids) == 0 {
		return "", NewError(NoSuchMessage)
	}
	sort.Strings(ids)
	return strings.Join(ids, "\n") + "\n", nil
}

// workDirFiles lists the regular files directly under the working root,
// skipping the metadata directory and any subdirectories (no
// sub-directory tracking).
func (r *Repository) workDirFiles() ([]string, error) {
	entries, err := os.ReadDir(r.workDir)
	if err != nil {
		return nil, fmt.Errorf("gitlet: listing working tree: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(r.workDir, e.Name()))
	}
	return paths, nil
}

// effectiveTracked computes (HEAD.tracked ∪ added) \ removed.
func effectiveTracked(head map[string]ID, staging *Staging) map[string]ID {
	result := make(map[string]ID, len(head)+len(staging.Added))
	for k, v := range head {
		result[k] = v
	}
	for k, v := range staging.Added {
		result[k] = v
	}
	for k := range staging.Removed {
		delete(result, k)
	}
	return result
}

// Status builds the exact five-section report.
func (r *Repository) Status() (string, error) {
	if err := r.requireInitialized(); err != nil {
		return "", err
	}

	branches, err := r.refs.ListBranches()
	if err != nil {
		return "", err
	}
	current, err := r.HeadBranch()
	if err != nil {
		return "", err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return "", err
	}
	staging, err := r.Staging()
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("=== Branches ===\n")
	sb.WriteString("*" + current + "\n")
	for _, b := range branches {
		if b != current {
			sb.WriteString(b + "\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString("=== Staged Files ===\n")
	addedNames := basenamesOf(mapKeys(staging.Added))
	for _, n := range addedNames {
		sb.WriteString(n + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString("=== Removed Files ===\n")
	removedNames := basenamesOf(setKeys(staging.Removed))
	for _, n := range removedNames {
		sb.WriteString(n + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString("=== Modifications Not Staged For Commit ===\n")
	effective := effectiveTracked(head.Tracked, staging)
	paths := mapKeys(effective)
	sort.Strings(paths)

	var present []string
	deleted := map[string]bool{}
	for _, p := range paths {
		info, err := os.Lstat(p)
		switch {
		case err == nil && !info.IsDir():
			present = append(present, p)
		case os.IsNotExist(err):
			deleted[p] = true
		}
	}
	hashes, err := r.hashFiles(present, true)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		switch {
		case deleted[p]:
			sb.WriteString(filepath.Base(p) + " (deleted)\n")
		default:
			if cur, ok := hashes[p]; ok && cur != effective[p] {
				sb.WriteString(filepath.Base(p) + " (modified)\n")
			}
		}
	}
	sb.WriteString("\n")

	sb.WriteString("=== Untracked Files ===\n")
	var untracked []string
	workFiles, err := r.workDirFiles()
	if err != nil {
		return "", err
	}
	for _, p := range workFiles {
		if _, ok := effective[p]; ok {
			continue
		}
		if _, ok := staging.Added[p]; ok {
			continue
		}
		untracked = append(untracked, filepath.Base(p))
	}
	sort.Strings(untracked)
	for _, n := range untracked {
		sb.WriteString(n + "\n")
	}
	sb.WriteString("\n")

	return sb.String(), nil
}

func mapKeys(m map[string]ID) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func setKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func basenamesOf(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	return names
}

// hashFiles computes the current blob id of each path in paths, hashing
// them concurrently through fsio.ScanWorkingTree sized by the
// repository's configured scan concurrency. tolerant controls how a
// per-file read failure is handled: Status cannot abort its whole report
// over one unreadable file, so tolerant callers get that path silently
// omitted from the result map, while a checkout/reset/merge safety check
// must see the error.
func (r *Repository) hashFiles(paths []string, tolerant bool) (map[string]ID, error) {
	if len(paths) == 0 {
		return map[string]ID{}, nil
	}

	tasks := make([]fsio.HashTask, len(paths))
	for i, p := range paths {
		tasks[i] = fsio.HashTask{Path: p, Hash: func(path string) (string, error) {
			blob, err := NewBlobFromFile(path)
			if err != nil {
				if tolerant {
					return "", nil
				}
				return "", err
			}
			return string(blob.ID), nil
		}}
	}

	results, err := fsio.ScanWorkingTree(r.cfg.Status.ScanConcurrency, tasks)
	if err != nil {
		return nil, err
	}

	out := make(map[string]ID, len(results))
	for _, res := range results {
		if res.Sum == "" {
			continue
		}
		out[res.Path] = ID(res.Sum)
	}
	return out, nil
}

// checkUntrackedOverwrite aborts if any working-tree file that is
// untracked relative to head+staging would be silently destroyed by
// restoring target.
func (r *Repository) checkUntrackedOverwrite(head, target *Commit) error {
	staging, err := r.Staging()
	if err != nil {
		return err
	}
	workFiles, err := r.workDirFiles()
	if err != nil {
		return err
	}

	var candidates []string
	for _, path := range workFiles {
		_, inHeadTracked := head.Tracked[path]
		_, inRemoved := staging.Removed[path]
		trackedByHead := inHeadTracked && !inRemoved
		_, inAdded := staging.Added[path]
		if trackedByHead || inAdded {
			continue
		}
		if _, inTarget := target.Tracked[path]; !inTarget {
			continue
		}
		candidates = append(candidates, path)
	}

	hashes, err := r.hashFiles(candidates, false)
	if err != nil {
		return err
	}
	for _, path := range candidates {
		if hashes[path] != target.Tracked[path] {
			return NewError(UntrackedOverwrite)
		}
	}
	return nil
}

// clearWorkingTree deletes every regular file directly under the working
// root, aggregating any per-file failures rather than aborting on the
// first one.
func (r *Repository) clearWorkingTree() error {
	paths, err := r.workDirFiles()
	if err != nil {
		return err
	}
	return fsio.RemoveAll(paths)
}

// CheckoutFile restores path from the HEAD commit.
func (r *Repository) CheckoutFile(name string) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	path := r.resolvePath(name)

	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	restored, err := head.RestoreTracked(r.store, path)
	if err != nil {
		return err
	}
	if !restored {
		return NewError(NotInCommit)
	}
	return nil
}

// CheckoutCommitFile restores path from an arbitrary commit, resolved
// from an id prefix.
func (r *Repository) CheckoutCommitFile(idPrefix, name string) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	id, err := r.store.Resolve(idPrefix)
	if err != nil {
		return err
	}
	commit, err := LoadCommit(r.store, id)
	if err != nil {
		return err
	}
	path := r.resolvePath(name)
	restored, err := commit.RestoreTracked(r.store, path)
	if err != nil {
		return err
	}
	if !restored {
		return NewError(NotInCommit)
	}
	return nil
}

// CheckoutBranch switches HEAD to branch name, after the untracked-
// overwrite safety check.
func (r *Repository) CheckoutBranch(name string) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	if !r.refs.BranchExists(name) {
		return NewError(NoSuchBranch)
	}
	current, err := r.HeadBranch()
	if err != nil {
		return err
	}
	if name == current {
		return NewError(AlreadyOnBranch)
	}

	targetTip, err := r.refs.BranchTip(name)
	if err != nil {
		return err
	}
	target, err := LoadCommit(r.store, targetTip)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	if err := r.checkUntrackedOverwrite(head, target); err != nil {
		return err
	}

	if err := r.clearWorkingTree(); err != nil {
		return err
	}
	if err := target.RestoreAllTracked(r.store); err != nil {
		return err
	}

	staging, err := r.Staging()
	if err != nil {
		return err
	}
	staging.Clear()
	if err := r.saveStaging(); err != nil {
		return err
	}

	if err := r.refs.SetCurrentBranch(name); err != nil {
		return err
	}
	r.headBranch = name
	r.headCommit = target
	return nil
}

// Branch creates a new branch ref pointing at HEAD.
func (r *Repository) Branch(name string) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	if r.refs.BranchExists(name) {
		return NewError(BranchExists)
	}
	headID, err := r.HeadCommitID()
	if err != nil {
		return err
	}
	return r.refs.SetBranchTip(name, headID)
}

// RmBranch deletes a branch ref.
func (r *Repository) RmBranch(name string) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	if !r.refs.BranchExists(name) {
		return NewError(NoSuchBranch)
	}
	current, err := r.HeadBranch()
	if err != nil {
		return err
	}
	if name == current {
		return NewError(RemoveCurrentBranch)
	}
	return r.refs.DeleteBranch(name)
}

// Reset moves the current branch's tip to an arbitrary commit, resolved
// from an id prefix, after the untracked-overwrite safety check. HEAD's
// branch name is unchanged.
func (r *Repository) Reset(idPrefix string) error {
	if err := r.requireInitialized(); err != nil {
		return err
	}
	id, err := r.store.Resolve(idPrefix)
	if err != nil {
		return err
	}
	target, err := LoadCommit(r.store, id)
	if err != nil {
		return err
	}
	head, err := r.HeadCommit()
	if err != nil {
		return err
	}
	if err := r.checkUntrackedOverwrite(head, target); err != nil {
		return err
	}

	if err := r.clearWorkingTree(); err != nil {
		return err
	}
	if err := target.RestoreAllTracked(r.store); err != nil {
		return err
	}

	staging, err := r.Staging()
	if err != nil {
		return err
	}
	staging.Clear()
	if err := r.saveStaging(); err != nil {
		return err
	}

	branch, err := r.HeadBranch()
	if err != nil {
		return err
	}
	if err := r.refs.SetBranchTip(branch, id); err != nil {
		return err
	}
	r.headCommit = target
	return nil
}
