package main

func runReset(args []string) int {
	if len(args) != 1 {
		return badOperands()
	}
	repo := openRepo()
	err := withRestoreSpinner("restoring working tree", func() error {
		return repo.Reset(args[0])
	})
	if err != nil {
		printErr(err)
	}
	return 0
}
