package gitlet

import (
	"container/heap"
	"fmt"
	"os"
)

// commitHeap is a max-heap over commits ordered by reverse-chronological
// timestamp (latest first), with id as a stable tie-break. Used by
// mergeBase to walk one side's history in date order while probing
// against the other side's full ancestor set.
type commitHeap []*Commit

func (h commitHeap) Len() int { return len(h) }
func (h commitHeap) Less(i, j int) bool {
	if !h[i].Timestamp.Equal(h[j].Timestamp) {
		return h[i].Timestamp.After(h[j].Timestamp)
	}
	return h[i].ID > h[j].ID
}
func (h commitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commitHeap) Push(x any) {
	*h = append(*h, x.(*Commit)) //nolint:errcheck
}

func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ancestorsOf walks every commit reachable from start (start included) by
// following parent links, with a plain FIFO queue — completeness is all
// that matters here, not visit order.
func (r *Repository) ancestorsOf(start ID) (map[ID]bool, error) {
	seen := map[ID]bool{start: true}
	queue := []ID{start}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		c, err := LoadCommit(r.store, id)
		if err != nil {
			return nil, err
		}
		for _, parentID := range c.Parents {
			if !seen[parentID] {
				seen[parentID] = true
				queue = append(queue, parentID)
			}
		}
	}
	return seen, nil
}

// mergeBase finds the most recent common ancestor of a and b. It first
// closes over a's full ancestor set (order doesn't matter there, so a
// plain queue walks it), then walks b's history newest-first through a
// commitHeap, returning the first commit that lands in a's ancestor set
// — the common ancestor closest to b's tip.
func (r *Repository) mergeBase(a, b ID) (ID, error) {
	if a == b {
		return a, nil
	}

	ancestorsA, err := r.ancestorsOf(a)
	if err != nil {
		return "", err
	}
	if ancestorsA[b] {
		return b, nil
	}

	commitB, err := LoadCommit(r.store, b)
	if err != nil {
		return "", err
	}

	visited := map[ID]bool{b: true}
	h := &commitHeap{}
	heap.Init(h)
	heap.Push(h, commitB)

	for h.Len() > 0 {
		c := heap.Pop(h).(*Commit) //nolint:errcheck
		if ancestorsA[c.ID] {
			return c.ID, nil
		}

		for _, parentID := range c.Parents {
			if visited[parentID] {
				continue
			}
			visited[parentID] = true
			parent, err := LoadCommit(r.store, parentID)
			if err != nil {
				return "", err
			}
			heap.Push(h, parent)
		}
	}

	return "", fmt.Errorf("gitlet: no common ancestor between %s and %s", a, b)
}

// MergeOutcome classifies how Merge resolved.
type MergeOutcome int

const (
	// MergeCommitted means a new merge commit was created.
	MergeCommitted MergeOutcome = iota
	// MergeAncestor means the other branch is an ancestor of the
	// current branch; no new commit was created.
	MergeAncestor
	// MergeFastForward means the current branch's tip fast-forwarded to
	// the other branch's tip; no new commit was created.
	MergeFastForward
)

// MergeResult reports how a merge resolved.
type MergeResult struct {
	Outcome  MergeOutcome
	Conflict bool
}

// Merge merges otherName into the current branch.
func (r *Repository) Merge(otherName string) (*MergeResult, error) {
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}

	staging, err := r.Staging()
	if err != nil {
		return nil, err
	}
	if !staging.IsClean() {
		return nil, NewError(UncommittedChanges)
	}
	if !r.refs.BranchExists(otherName) {
		return nil, NewError(NoSuchBranch)
	}
	current, err := r.HeadBranch()
	if err != nil {
		return nil, err
	}
	if otherName == current {
		return nil, NewError(MergeWithSelf)
	}

	otherTip, err := r.refs.BranchTip(otherName)
	if err != nil {
		return nil, err
	}
	headTip, err := r.HeadCommitID()
	if err != nil {
		return nil, err
	}
	otherCommit, err := LoadCommit(r.store, otherTip)
	if err != nil {
		return nil, err
	}
	headCommit, err := r.HeadCommit()
	if err != nil {
		return nil, err
	}

	if err := r.checkUntrackedOverwrite(headCommit, otherCommit); err != nil {
		return nil, err
	}

	lca, err := r.mergeBase(headTip, otherTip)
	if err != nil {
		return nil, err
	}

	if lca == otherTip {
		return &MergeResult{Outcome: MergeAncestor}, nil
	}

	if lca == headTip {
		if err := r.clearWorkingTree(); err != nil {
			return nil, err
		}
		if err := otherCommit.RestoreAllTracked(r.store); err != nil {
			return nil, err
		}
		if err := r.refs.SetBranchTip(current, otherTip); err != nil {
			return nil, err
		}
		r.headCommit = otherCommit
		return &MergeResult{Outcome: MergeFastForward}, nil
	}

	baseCommit, err := LoadCommit(r.store, lca)
	if err != nil {
		return nil, err
	}

	conflict, err := r.applyThreeWay(baseCommit, headCommit, otherCommit, staging)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Merged %s into %s.", otherName, current)
	if err := r.commitWithParents(message, []ID{otherTip}); err != nil {
		return nil, err
	}

	return &MergeResult{Outcome: MergeCommitted, Conflict: conflict}, nil
}

// applyThreeWay walks the union of paths tracked by base, head, and
// other, applying the classic three-way merge rules from the union. It
// mutates the working tree and the staging area; the caller is
// responsible for committing the result.
func (r *Repository) applyThreeWay(base, head, other *Commit, staging *Staging) (bool, error) {
	allPaths := map[string]bool{}
	for p := range base.Tracked {
		allPaths[p] = true
	}
	for p := range head.Tracked {
		allPaths[p] = true
	}
	for p := range other.Tracked {
		allPaths[p] = true
	}

	conflict := false

	for path := range allPaths {
		baseID, inBase := base.Tracked[path]
		headID, inHead := head.Tracked[path]
		otherID, inOther := other.Tracked[path]

		switch {
		case inBase && inHead && inOther:
			headChanged := headID != baseID
			otherChanged := otherID != baseID
			switch {
			case !headChanged && otherChanged:
				if err := r.stageOtherVersion(path, otherID, staging); err != nil {
					return false, err
				}
			case headChanged && !otherChanged:
				// keep HEAD
			case !headChanged && !otherChanged:
				// unchanged on both sides
			default:
				if headID == otherID {
					// both changed to the same content
				} else {
					if err := r.stageConflict(path, headID, true, otherID, true, staging); err != nil {
						return false, err
					}
					conflict = true
				}
			}

		case inBase && inHead && !inOther:
			if headID == baseID {
				if err := r.stageRemoval(path, staging); err != nil {
					return false, err
				}
			} else {
				if err := r.stageConflict(path, headID, true, "", false, staging); err != nil {
					return false, err
				}
				conflict = true
			}

		case inBase && !inHead && inOther:
			if otherID == baseID {
				// HEAD already deleted it; stay deleted
			} else {
				if err := r.stageConflict(path, "", false, otherID, true, staging); err != nil {
					return false, err
				}
				conflict = true
			}

		case inBase && !inHead && !inOther:
			// deleted on both sides

		case !inBase && !inHead && inOther:
			if err := r.stageOtherVersion(path, otherID, staging); err != nil {
				return false, err
			}

		case !inBase && inHead && !inOther:
			// keep HEAD

		case !inBase && inHead && inOther:
			if headID != otherID {
				if err := r.stageConflict(path, headID, true, otherID, true, staging); err != nil {
					return false, err
				}
				conflict = true
			}
		}
	}

	return conflict, nil
}

func (r *Repository) stageOtherVersion(path string, otherID ID, staging *Staging) error {
	blob, err := LoadBlob(r.store, otherID)
	if err != nil {
		return err
	}
	if err := blob.Restore(path); err != nil {
		return err
	}
	staging.Added[path] = otherID
	delete(staging.Removed, path)
	return nil
}

func (r *Repository) stageRemoval(path string, staging *Staging) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("gitlet: removing %s: %w", path, err)
	}
	staging.Removed[path] = true
	delete(staging.Added, path)
	return nil
}

// stageConflict writes the bracketed conflict payload to path and stages
// the resulting blob.
func (r *Repository) stageConflict(path string, headID ID, hasHead bool, otherID ID, hasOther bool, staging *Staging) error {
	var headContent, otherContent []byte
	if hasHead {
		blob, err := LoadBlob(r.store, headID)
		if err != nil {
			return err
		}
		headContent = blob.Content
	}
	if hasOther {
		blob, err := LoadBlob(r.store, otherID)
		if err != nil {
			return err
		}
		otherContent = blob.Content
	}

	payload := "<<<<<<< HEAD\n" + string(headContent) + "=======\n" + string(otherContent) + ">>>>>>>\n"

	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil { //nolint:gosec // conflict marker payload for a tracked path
		return fmt.Errorf("gitlet: writing conflict payload to %s: %w", path, err)
	}

	blob, err := NewBlobFromFile(path)
	if err != nil {
		return err
	}
	if err := blob.Save(r.store); err != nil {
		return err
	}
	staging.Added[path] = blob.ID
	delete(staging.Removed, path)
	return nil
}
