package main

import (
	"os"

	"abapai/cli"
)

func main() {
	os.Exit(cli.Execute())
}
