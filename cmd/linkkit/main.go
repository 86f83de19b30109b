package main

import (
	"os"

	"linkkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
