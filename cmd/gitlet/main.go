// Command gitlet is the command-line front end for the gitlet version
// control engine. It parses argv, dispatches to internal/gitlet, and
// prints diagnostics to stdout — the exit code is 0 for every command
// outcome, per the engine's error-handling convention; failures are
// communicated by text. The one exception is a failure to open the
// repository at all (see openRepo), which exits non-zero via log.Fatalf.
package main

import (
	"fmt"
	"os"

	"github.com/rybkr/gitlet/internal/cli"
)

func main() {
	app := buildApp()
	os.Exit(app.Run(os.Args[1:]))
}

func buildApp() *cli.App {
	app := cli.NewApp()

	app.Register(&cli.Command{Name: "init", Run: runInit})
	app.Register(&cli.Command{Name: "add", Run: runAdd})
	app.Register(&cli.Command{Name: "rm", Run: runRm})
	app.Register(&cli.Command{Name: "commit", Run: runCommit})
	app.Register(&cli.Command{Name: "log", Run: runLog})
	app.Register(&cli.Command{Name: "global-log", Run: runGlobalLog})
	app.Register(&cli.Command{Name: "find", Run: runFind})
	app.Register(&cli.Command{Name: "status", Run: runStatus})
	app.Register(&cli.Command{Name: "checkout", Run: runCheckout})
	app.Register(&cli.Command{Name: "branch", Run: runBranch})
	app.Register(&cli.Command{Name: "rm-branch", Run: runRmBranch})
	app.Register(&cli.Command{Name: "reset", Run: runReset})
	app.Register(&cli.Command{Name: "merge", Run: runMerge})

	return app
}

func badOperands() int {
	fmt.Println("Incorrect operands.")
	return 0
}
