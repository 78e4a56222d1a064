package fs

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mmrrcingest/internal/blob/core"
)

func TestFilesystemStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Driver() != core.DriverFilesystem || s.Root() != root {
		t.Fatalf("unexpected driver/root %s %s", s.Driver(), s.Root())
	}
	info, err := s.Put(ctx, "genotypes.csv", strings.NewReader("strain_id\nMMRRC:000001-UNC\n"), core.PutOptions{Metadata: map[string]string{"rows": "1"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ContentType != core.ContentTypeCSV {
		t.Fatalf("content type should be inferred from extension, got %q", info.ContentType)
	}
	if info.ETag == "" || info.Size != int64(len("strain_id\nMMRRC:000001-UNC\n")) {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "genotypes.csv", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put failure")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if !e.IsDir() && e.Name() != "genotypes.csv" {
			t.Fatalf("unexpected file in output root: %s", e.Name())
		}
	}
	got, rc, err := s.Get(ctx, "genotypes.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !strings.Contains(string(body), "MMRRC:000001-UNC") || got.Metadata["rows"] != "1" {
		t.Fatalf("unexpected get result %q %+v", body, got)
	}
	url, err := s.PresignURL(ctx, "genotypes.csv", core.SignedURLOptions{})
	if err != nil || !strings.HasPrefix(url, "file://") {
		t.Fatalf("unexpected presign %q %v", url, err)
	}
	if _, err := s.PresignURL(ctx, "genotypes.csv", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported for PUT, got %v", err)
	}
	if ok, err := s.Delete(ctx, "genotypes.csv"); !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := s.Delete(ctx, "genotypes.csv"); ok || err != nil {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	if _, err := s.Head(ctx, "genotypes.csv"); !errors.Is(err, iofs.ErrNotExist) {
		t.Fatalf("expected not exist after delete, got %v", err)
	}
}

func TestFilesystemStoreListsForeignFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "mmrrc_genotypes_nodes.tsv"), []byte("id\tcategory\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := s.Put(ctx, "nested/a.nt.gz", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	list, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 entries (sidecars hidden), got %+v", list)
	}
	if list[0].Key != "mmrrc_genotypes_nodes.tsv" || list[0].ContentType != core.ContentTypeTSV || list[0].Size != int64(len("id\tcategory\n")) {
		t.Fatalf("foreign file info wrong: %+v", list[0])
	}
	if list[1].Key != "nested/a.nt.gz" || list[1].ContentType != core.ContentTypeNTriple {
		t.Fatalf("nested info wrong: %+v", list[1])
	}
	filtered, err := s.List(ctx, "nested/")
	if err != nil || len(filtered) != 1 {
		t.Fatalf("prefix filter failed: %v %v", filtered, err)
	}
}

func TestFilesystemStoreRejectsBadKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "  ", "../escape.csv", "nested/../../escape.csv", "/abs.csv", ".blobmeta/x.json"} {
		if _, err := s.Put(context.Background(), key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestFilesystemStoreCorruptMeta(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Put(ctx, "edges.tsv", strings.NewReader("id\n"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, metaDir, "edges.tsv.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := s.Head(ctx, "edges.tsv"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewDefaultsRoot(t *testing.T) {
	t.Chdir(t.TempDir())
	s, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Root() != "output" {
		t.Fatalf("expected default root output, got %s", s.Root())
	}
	if _, err := os.Stat("output"); err != nil {
		t.Fatalf("default root not created: %v", err)
	}
}

func TestFilesystemStoreListSkipsUnaddressableEntries(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for name, body := range map[string]string{
		"mmrrc_genotypes_nodes.tsv": "id\tcategory\n",
		"catalog..backup.csv":       "a\n",
	} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Symlink(filepath.Join(root, "missing.tsv"), filepath.Join(root, "link.tsv")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(t.TempDir(), filepath.Join(root, "dir_link_edges.tsv")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	list, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("list should skip stray entries: %v", err)
	}
	var keys []string
	for _, info := range list {
		keys = append(keys, info.Key)
	}
	want := []string{"catalog..backup.csv", "mmrrc_genotypes_nodes.tsv"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected keys %v want %v", keys, want)
	}
}

func TestOpenRequiresExistingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "output")
	if _, err := Open(missing); !errors.Is(err, iofs.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
	if _, err := os.Stat(missing); !errors.Is(err, iofs.ErrNotExist) {
		t.Fatalf("open must not create the root: %v", err)
	}
	file := filepath.Join(t.TempDir(), "plain.csv")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(file); err == nil {
		t.Fatalf("expected not-a-directory error")
	}
	root := t.TempDir()
	s, err := Open(root)
	if err != nil || s.Root() != root {
		t.Fatalf("open existing: %v", err)
	}
}
