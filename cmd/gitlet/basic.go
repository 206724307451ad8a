package main

func runInit(args []string) int {
	if len(args) != 0 {
		return badOperands()
	}
	repo := openRepo()
	if err := repo.Init(); err != nil {
		printErr(err)
	}
	return 0
}

func runAdd(args []string) int {
	if len(args) != 1 {
		return badOperands()
	}
	repo := openRepo()
	if err := repo.Add(args[0]); err != nil {
		printErr(err)
	}
	return 0
}

func runRm(args []string) int {
	if len(args) != 1 {
		return badOperands()
	}
	repo := openRepo()
	if err := repo.Rm(args[0]); err != nil {
		printErr(err)
	}
	return 0
}

func runCommit(args []string) int {
	if len(args) != 1 {
		return badOperands()
	}
	repo := openRepo()
	if err := repo.Commit(args[0]); err != nil {
		printErr(err)
	}
	return 0
}
