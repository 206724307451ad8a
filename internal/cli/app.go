// Package cli provides the subcommand dispatch table for the gitlet
// command-line front end. Unlike a general-purpose CLI framework, the
// dispatch surface here is closed: a fixed set of command names, no
// flags, no help text, no color. Every unrecognized shape must produce
// exactly the diagnostic the engine's error taxonomy mandates.
package cli

import (
	"fmt"
)

// Command describes a single CLI subcommand. Run receives the argv
// following the command name and returns a process exit code.
type Command struct {
	Name string
	Run  func(args []string) int
}

// App is the subcommand dispatch table.
type App struct {
	commands map[string]*Command
}

// NewApp creates an empty App.
func NewApp() *App {
	return &App{commands: make(map[string]*Command)}
}

// Register adds a command to the app. It panics if a command with the
// same name has already been registered.
func (a *App) Register(cmd *Command) {
	if _, exists := a.commands[cmd.Name]; exists {
		panic(fmt.Sprintf("cli: duplicate command %q", cmd.Name))
	}
	a.commands[cmd.Name] = cmd
}

// Lookup returns the named command, or nil if not found.
func (a *App) Lookup(name string) *Command {
	return a.commands[name]
}

// Run dispatches args (excluding the program name) to the matching
// command. An empty argv or an unknown command name prints its diagnostic
// and returns 0; otherwise it returns the command's own exit code.
func (a *App) Run(args []string) int {
	if len(args) == 0 {
		fmt.Println("Please enter a command.")
		return 0
	}

	cmd := a.Lookup(args[0])
	if cmd == nil {
		fmt.Println("No command with that name exists.")
		return 0
	}

	return cmd.Run(args[1:])
}
