package main

import (
	"os"

	"github.com/tanami-dev/tanami/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
