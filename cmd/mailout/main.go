/*
Package main provides the CLI entry point for Mailout.
*/
package main

import (
	"os"

	"github.com/oarkflow/mailout/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
