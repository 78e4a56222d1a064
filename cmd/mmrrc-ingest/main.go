// Command mmrrc-ingest runs the MMRRC catalog ingest: preprocess, transform,
// report and rdf subcommands over a shared output store.
package main

import (
	"io"
	"os"

	"mmrrcingest/internal/cli"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	return cli.Execute(cli.NewRootCommand(stdout, stderr), args)
}
