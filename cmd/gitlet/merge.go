package main

import (
	"fmt"

	"github.com/rybkr/gitlet/internal/gitlet"
)

func runMerge(args []string) int {
	if len(args) != 1 {
		return badOperands()
	}
	repo := openRepo()

	var result *gitlet.MergeResult
	err := withRestoreSpinner("merging", func() error {
		var mergeErr error
		result, mergeErr = repo.Merge(args[0])
		return mergeErr
	})
	if err != nil {
		printErr(err)
		return 0
	}

	switch result.Outcome {
	case gitlet.MergeAncestor:
		fmt.Println("Given branch is an ancestor of the current branch.")
	case gitlet.MergeFastForward:
		fmt.Println("Current branch fast-forwarded.")
	case gitlet.MergeCommitted:
		if result.Conflict {
			fmt.Println("Encountered a merge conflict.")
		}
	}
	return 0
}
