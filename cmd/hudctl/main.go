package main

import (
	"os"

	"skihud/cmd/hudctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
