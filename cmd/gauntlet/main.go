// cmd/gauntlet/main.go
package main

import (
	cmd "github.com/mwiater/gauntlet/internal/cli"
)

// main starts the gauntlet CLI application by delegating to the cobra root
// command. It does not take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
