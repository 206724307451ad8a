package main

import "fmt"

func runLog(args []string) int {
	if len(args) != 0 {
		return badOperands()
	}
	repo := openRepo()
	out, err := repo.Log()
	if err != nil {
		printErr(err)
		return 0
	}
	fmt.Print(out)
	return 0
}

func runGlobalLog(args []string) int {
	if len(args) != 0 {
		return badOperands()
	}
	repo := openRepo()
	out, err := repo.GlobalLog()
	if err != nil {
		printErr(err)
		return 0
	}
	fmt.Print(out)
	return 0
}

func runFind(args []string) int {
	if len(args) != 1 {
		return badOperands()
	}
	repo := openRepo()
	out, err := repo.Find(args[0])
	if err != nil {
		printErr(err)
		return 0
	}
	fmt.Print(out)
	return 0
}
