package main

import (
	"fmt"
	"os"

	"github.com/cool4zbl/build-redis-from-scratch/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
