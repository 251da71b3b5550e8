package main

import (
	"os"

	"github.com/vytor/revplan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
