package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "mmrrc-ingest ") {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestMainExitsWithStatus(t *testing.T) {
	var got int
	prevExit, prevArgs := exitFunc, os.Args
	exitFunc = func(code int) { got = code }
	os.Args = []string{"mmrrc-ingest", "no-such-command"}
	defer func() { exitFunc, os.Args = prevExit, prevArgs }()
	main()
	if got != 1 {
		t.Fatalf("expected exit 1 for unknown command, got %d", got)
	}
}
