package main

import (
	"os"

	"chefsnap/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
