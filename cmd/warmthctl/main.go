package main

import (
	"os"

	"github.com/everreach/warmthd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
