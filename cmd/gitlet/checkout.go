package main

import "github.com/rybkr/gitlet/internal/progress"

func runCheckout(args []string) int {
	repo := openRepo()

	switch len(args) {
	case 1:
		err := withRestoreSpinner("restoring working tree", func() error {
			return repo.CheckoutBranch(args[0])
		})
		if err != nil {
			printErr(err)
		}
		return 0

	case 2:
		if args[0] != "--" {
			return badOperands()
		}
		if err := repo.CheckoutFile(args[1]); err != nil {
			printErr(err)
		}
		return 0

	case 3:
		if args[1] != "--" {
			return badOperands()
		}
		if err := repo.CheckoutCommitFile(args[0], args[2]); err != nil {
			printErr(err)
		}
		return 0

	default:
		return badOperands()
	}
}

// withRestoreSpinner runs op (a working-tree restore that may touch many
// files) while showing a stderr-only progress spinner on an interactive
// terminal.
func withRestoreSpinner(msg string, op func() error) error {
	sp := progress.New(msg)
	sp.Start()
	defer sp.Stop()
	return op()
}
