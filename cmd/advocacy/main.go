// Package main is the entry point for the advocacy CLI.
package main

import (
	"os"

	"advocacy-workers/cmd/advocacy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
