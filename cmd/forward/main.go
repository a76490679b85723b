package main

import (
	"fmt"
	"os"

	"github.com/denniswebb/forward/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "forward: %v\n", err)
		os.Exit(1)
	}
}
