package main

import (
	"os"

	"github.com/eugo-inc/brotli/cmd/brotli-build/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
