// Command mmrrc-report writes count reports for the KGX files in an output
// directory (default "output").
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
	return cli.Execute(cli.NewReportCommand(stdout, stderr), args)
}
