package main

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command tree and reports any returned error on stderr.
func run(args []string, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		log.NewWithOptions(stderr, log.Options{ReportTimestamp: true}).Error("relay failed", "err", err)
		return 1
	}
	return 0
}
