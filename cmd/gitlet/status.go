package main

import "fmt"

func runStatus(args []string) int {
	if len(args) != 0 {
		return badOperands()
	}
	repo := openRepo()
	out, err := repo.Status()
	if err != nil {
		printErr(err)
		return 0
	}
	fmt.Print(out)
	return 0
}
