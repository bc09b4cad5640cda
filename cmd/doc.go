// Package cmd implements the CLI commands for pve-cli.
//
// # Architecture
//
// ## Core CLI
//
//   - root.go: App struct, cobra root command, persistent connection flags
//     and the lazy resource tree loader shared by the one-shot commands
//   - login.go: API token commands (login, logout, status)
//
// ## Interactive Shell
//
//   - interactive.go: the sh command. It prints the banner, loads the
//     metadata, then runs a script or the go-prompt REPL on top of
//     shell.Session
//
// # One-shot commands
//
// get, set, create, delete, usage and ls are the same cobra commands the
// shell uses (shell.ResourceCommands). Outside the shell the resource tree
// is loaded the first time one of them runs.
//
// # Usage
//
//	func main() {
//	    cmd.Execute()
//	}
package cmd
