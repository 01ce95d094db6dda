package main

import (
	"os"

	"github.com/leefowlercu/restore2fa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
