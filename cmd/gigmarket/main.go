package main

import (
	"os"

	"gig-marketplace/cmd/gigmarket/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
