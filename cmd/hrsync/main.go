// Command hrsync synchronizes employee changes from an HR store to a
// payroll store through a durable change log and a file-based payload.
package main

import (
	"os"

	"github.com/kilupskalvis/hrsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
