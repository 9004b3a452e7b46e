package main

import (
	"os"

	"github.com/octantlabs/octant/cmd/octant/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
