package main

import (
	"os"

	"github.com/tingshu-cli/tingshu/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
