package main

import (
	"os"

	"github.com/spymux/spymux/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
