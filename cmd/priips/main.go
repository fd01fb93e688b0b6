package main

import (
	"os"

	"github.com/rustyeddy/priips/cmd/priips/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
