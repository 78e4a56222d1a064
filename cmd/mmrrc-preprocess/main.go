// Command mmrrc-preprocess normalizes a raw MMRRC catalog CSV into the
// genotypes, allele_to_genotype and genotype_to_phenotype tables.
//
//	mmrrc-preprocess <input_csv> <output_dir>
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
	return cli.Execute(cli.NewPreprocessCommand(stdout, stderr), args)
}
