package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRunRequiresTwoArgs(t *testing.T) {
	for _, args := range [][]string{nil, {"in.csv"}, {"in.csv", "out", "extra"}} {
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != 1 {
			t.Fatalf("args %v: expected exit 1, got %d", args, code)
		}
	}
}

func TestRunWritesTables(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "catalog.csv")
	csv := "STRAIN/STOCK_ID,STRAIN/STOCK_DESIGNATION,MPT_IDS\nMMRRC:000001-UNC,B6-Tg1,lethality [MP:0008762]\n"
	if err := os.WriteFile(in, []byte(csv), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := filepath.Join(dir, "output")
	var stdout, stderr bytes.Buffer
	if code := run([]string{in, out}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	for _, name := range []string{"genotypes.csv", "allele_to_genotype.csv", "genotype_to_phenotype.csv"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestMainExitsWithStatus(t *testing.T) {
	got := -1
	prevExit, prevArgs := exitFunc, os.Args
	exitFunc = func(code int) { got = code }
	os.Args = []string{"mmrrc-preprocess"}
	defer func() { exitFunc, os.Args = prevExit, prevArgs }()
	main()
	if got != 1 {
		t.Fatalf("expected exit 1, got %d", got)
	}
}
