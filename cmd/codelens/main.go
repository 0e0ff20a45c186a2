package main

import (
	"os"

	"github.com/dshills/codelens/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
