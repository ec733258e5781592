package main

import (
	"os"

	"flux/internal/cli"
	"flux/internal/commands"
)

func main() {
	cli.LoadEnvFile()
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
