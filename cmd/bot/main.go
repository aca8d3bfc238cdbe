package main

// Alternate entry that boots straight into the bot without Cobra routing
// go run ./cmd/bot

import (
	"fmt"
	"os"

	"memescout/cmd/commands"
)

func main() {
	if err := commands.RunBot(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
