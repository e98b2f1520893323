package main

import (
	"os"

	"github.com/Simplici0/printledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
