package main

import (
	"os"

	"github.com/anandbmuley/deep-signal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
