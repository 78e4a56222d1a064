package blob

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenDefaultsToFilesystem(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	store, err := Open(context.Background(), Config{FSRoot: root})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", store.Driver())
	}
	if _, err := Replace(context.Background(), store, "genotypes.csv", []byte("strain_id\n"), PutOptions{ContentType: ContentTypeCSV}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	b, err := ReadAll(context.Background(), store, "genotypes.csv")
	if err != nil || string(b) != "strain_id\n" {
		t.Fatalf("read back %q err=%v", b, err)
	}
}

func TestOpenMemoryWithPrefix(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Config{Driver: DriverMemory, Prefix: "runs/2024"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := Replace(ctx, store, "a_nodes.tsv", []byte("id\n"), PutOptions{}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	infos, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "a_nodes.tsv" {
		t.Fatalf("prefixed listing should return relative keys, got %+v", infos)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestOpenMustExistLeavesMissingRootAlone(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	if _, err := Open(context.Background(), Config{FSRoot: root, MustExist: true}); !errors.Is(err, iofs.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
	if _, err := os.Stat(root); !errors.Is(err, iofs.ErrNotExist) {
		t.Fatalf("root should not be created: %v", err)
	}
}
