package main

import (
	"fmt"
	"os"

	"gatherly/cmd/gatherly/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
