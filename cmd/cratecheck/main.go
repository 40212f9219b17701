package main

import (
	"os"

	"git.home.luguber.info/inful/cratecheck/cmd/cratecheck/commands"
)

func main() {
	os.Exit(commands.Main(os.Args[1:]))
}
