// Command docextract extracts fields from documents with configurable rules.
package main

import (
	"os"

	"github.com/joseph-ayodele/doc-extractor/cmd/docextract/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
