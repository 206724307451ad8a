package main

func runBranch(args []string) int {
	if len(args) != 1 {
		return badOperands()
	}
	repo := openRepo()
	if err := repo.Branch(args[0]); err != nil {
		printErr(err)
	}
	return 0
}

func runRmBranch(args []string) int {
	if len(args) != 1 {
		return badOperands()
	}
	repo := openRepo()
	if err := repo.RmBranch(args[0]); err != nil {
		printErr(err)
	}
	return 0
}
