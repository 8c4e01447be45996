package main

import (
	"os"

	"github.com/wonny/stocktracker/cmd/tracker/commands"
)

// main is the entry point for the tracker CLI
// ⭐ single CLI entry point: go run ./cmd/tracker [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
