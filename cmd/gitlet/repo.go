package main

import (
	"fmt"
	"log"
	"os"

	"github.com/rybkr/gitlet/internal/gitlet"
)

// openRepo opens the repository rooted at the current working directory.
// A failure here is outside the documented error taxonomy (e.g. the
// working directory vanished underneath the process) and is logged
// rather than folded into the Kind table.
func openRepo() *gitlet.Repository {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("gitlet: determining working directory: %v", err)
	}
	repo, err := gitlet.Open(wd)
	if err != nil {
		log.Fatalf("gitlet: %v", err)
	}
	return repo
}

// printErr prints a command failure's diagnostic line. Domain errors
// (gitlet.Error) print their exact mandated message; anything else is an
// unexpected internal condition.
func printErr(err error) {
	fmt.Println(err.Error())
}
