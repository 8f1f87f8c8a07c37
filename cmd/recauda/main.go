package main

import (
	"os"

	"github.com/recauda-dev/recauda/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
