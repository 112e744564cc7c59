// Package main is the entry point for the typeahead CLI.
package main

import (
	"os"

	"github.com/mhoffs/typeahead/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
