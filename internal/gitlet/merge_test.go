package gitlet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMergeRejectsSelf(t *testing.T) {
	r, _ := newTestRepo(t)
	if _, err := r.Merge("master"); err == nil {
		t.Fatal("expected merging a branch with itself to fail")
	} else if k, ok := KindOf(err); !ok || k != MergeWithSelf {
		t.Fatalf("expected MergeWithSelf, got %v", err)
	}
}

func TestMergeRejectsNoSuchBranch(t *testing.T) {
	r, _ := newTestRepo(t)
	if _, err := r.Merge("ghost"); err == nil {
		t.Fatal("expected merging a nonexistent branch to fail")
	} else if k, ok := KindOf(err); !ok || k != NoSuchBranch {
		t.Fatalf("expected NoSuchBranch, got %v", err)
	}
}

func TestMergeRejectsUncommittedChanges(t *testing.T) {
	r, dir := newTestRepo(t)
	if err := r.Branch("other"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	write(t, dir, "a.txt", "1")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Merge("other"); err == nil {
		t.Fatal("expected merge with staged changes pending to fail")
	} else if k, ok := KindOf(err); !ok || k != UncommittedChanges {
		t.Fatalf("expected UncommittedChanges, got %v", err)
	}
}

func TestMergeAncestorOutcome(t *testing.T) {
	r, dir := newTestRepo(t)
	write(t, dir, "a.txt", "1")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("a1"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.Branch("behind"); err != nil {
		t.Fatalf("Branch: %v", err)
	}

	write(t, dir, "a.txt", "2")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("a2"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	result, err := r.Merge("behind")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.Outcome != MergeAncestor {
		t.Fatalf("expected MergeAncestor, got %v", result.Outcome)
	}
}

func TestMergeFastForwardOutcome(t *testing.T) {
	r, dir := newTestRepo(t)
	write(t, dir, "a.txt", "1")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("a1"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.Branch("ahead"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if err := r.CheckoutBranch("ahead"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}

	write(t, dir, "a.txt", "2")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("a2"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}

	result, err := r.Merge("ahead")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.Outcome != MergeFastForward {
		t.Fatalf("expected MergeFastForward, got %v", result.Outcome)
	}

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("reading a.txt: %v", err)
	}
	if string(content) != "2" {
		t.Fatalf("expected fast-forwarded content %q, got %q", "2", content)
	}
}

func TestMergeNonConflictingTwoSidedChange(t *testing.T) {
	r, dir := newTestRepo(t)
	write(t, dir, "base.txt", "base\n")
	if err := r.Add("base.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.Branch("other"); err != nil {
		t.Fatalf("Branch: %v", err)
	}

	write(t, dir, "head-only.txt", "head\n")
	if err := r.Add("head-only.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("add head-only"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CheckoutBranch("other"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	write(t, dir, "other-only.txt", "other\n")
	if err := r.Add("other-only.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("add other-only"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}

	result, err := r.Merge("other")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.Outcome != MergeCommitted {
		t.Fatalf("expected MergeCommitted, got %v", result.Outcome)
	}
	if result.Conflict {
		t.Fatal("expected no conflict when each side adds a distinct file")
	}

	if _, err := os.Stat(filepath.Join(dir, "other-only.txt")); err != nil {
		t.Fatalf("expected other-only.txt to be present after merge: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "head-only.txt")); err != nil {
		t.Fatalf("expected head-only.txt to remain after merge: %v", err)
	}
}

func TestMergeConflictingEdit(t *testing.T) {
	r, dir := newTestRepo(t)
	write(t, dir, "f.txt", "base\n")
	if err := r.Add("f.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.Branch("other"); err != nil {
		t.Fatalf("Branch: %v", err)
	}

	write(t, dir, "f.txt", "head version\n")
	if err := r.Add("f.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("head edit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CheckoutBranch("other"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	write(t, dir, "f.txt", "other version\n")
	if err := r.Add("f.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("other edit"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}

	result, err := r.Merge("other")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !result.Conflict {
		t.Fatal("expected a conflicting edit on both sides to be flagged")
	}

	content, err := os.ReadFile(filepath.Join(dir, "f.txt"))
	if err != nil {
		t.Fatalf("reading f.txt: %v", err)
	}
	want := "<<<<<<< HEAD\nhead version\n=======\nother version\n>>>>>>>\n"
	if string(content) != want {
		t.Fatalf("content = %q, want %q", content, want)
	}
}

func TestMergeBaseFindsCommonAncestor(t *testing.T) {
	r, dir := newTestRepo(t)
	write(t, dir, "a.txt", "1")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	baseID, err := r.HeadCommitID()
	if err != nil {
		t.Fatalf("HeadCommitID: %v", err)
	}

	if err := r.Branch("side"); err != nil {
		t.Fatalf("Branch: %v", err)
	}

	write(t, dir, "a.txt", "2")
	if err := r.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("on master"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	headID, err := r.HeadCommitID()
	if err != nil {
		t.Fatalf("HeadCommitID: %v", err)
	}

	if err := r.CheckoutBranch("side"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	write(t, dir, "b.txt", "3")
	if err := r.Add("b.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("on side"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	sideID, err := r.HeadCommitID()
	if err != nil {
		t.Fatalf("HeadCommitID: %v", err)
	}

	lca, err := r.mergeBase(headID, sideID)
	if err != nil {
		t.Fatalf("mergeBase: %v", err)
	}
	if lca != baseID {
		t.Fatalf("mergeBase = %s, want %s", lca, baseID)
	}
}

func TestMergeCommitMessageFormat(t *testing.T) {
	r, dir := newTestRepo(t)
	write(t, dir, "base.txt", "b\n")
	if err := r.Add("base.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("base"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.Branch("feature"); err != nil {
		t.Fatalf("Branch: %v", err)
	}
	if err := r.CheckoutBranch("feature"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	write(t, dir, "feature.txt", "f\n")
	if err := r.Add("feature.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("add feature"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CheckoutBranch("master"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	write(t, dir, "master-only.txt", "m\n")
	if err := r.Add("master-only.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Commit("add master-only"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := r.Merge("feature"); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	log, err := r.Log()
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !strings.Contains(log, "Merged feature into master.") {
		t.Fatalf("expected merge commit message in log, got:\n%s", log)
	}
	if !strings.Contains(log, "Merge: ") {
		t.Fatalf("expected a Merge: line in log, got:\n%s", log)
	}
}
