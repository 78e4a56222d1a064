package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mmrrcingest/internal/tabular"
	"mmrrcingest/pkg/domain"
)

func genotypes(ids ...string) *tabular.Table {
	t := &tabular.Table{Name: domain.TableGenotypes, Columns: domain.GenotypeColumns}
	for _, id := range ids {
		row := make([]string, len(domain.GenotypeColumns))
		row[0] = id
		row[1] = "designation " + id
		t.Rows = append(t.Rows, row)
	}
	return t
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT count(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestPublishPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "mmrrc.db")
	pub, err := New(ctx, path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if pub.Path() != path {
		t.Fatalf("unexpected path %s", pub.Path())
	}
	if err := pub.Publish(ctx, genotypes("MMRRC:000001-UNC", "MMRRC:000002-MU")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if got := count(t, reopened.DB(), domain.TableGenotypes); got != 2 {
		t.Fatalf("expected 2 genotypes after reopen, got %d", got)
	}
	var state sql.NullString
	if err := reopened.DB().QueryRow("SELECT state FROM genotypes WHERE strain_id = ?", "MMRRC:000001-UNC").Scan(&state); err != nil {
		t.Fatalf("select: %v", err)
	}
	if state.Valid {
		t.Fatalf("empty cells should be stored as NULL, got %q", state.String)
	}
}

func TestPublishReplacesAndIsAtomic(t *testing.T) {
	ctx := context.Background()
	pub, err := New(ctx, filepath.Join(t.TempDir(), "mmrrc.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })
	if err := pub.Publish(ctx, genotypes("A", "B", "C")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := pub.Publish(ctx, genotypes("D")); err != nil {
		t.Fatalf("republish: %v", err)
	}
	if got := count(t, pub.DB(), domain.TableGenotypes); got != 1 {
		t.Fatalf("expected replace to leave 1 row, got %d", got)
	}
	// duplicate primary key aborts the whole transaction
	err = pub.Publish(ctx, genotypes("E"), &tabular.Table{Name: domain.TableGenotypes, Columns: domain.GenotypeColumns, Rows: [][]string{{"X"}, {"X"}}})
	if err == nil || !strings.Contains(err.Error(), "insert genotypes row 2") {
		t.Fatalf("expected constraint failure, got %v", err)
	}
	var id string
	if err := pub.DB().QueryRow("SELECT strain_id FROM genotypes").Scan(&id); err != nil || id != "D" {
		t.Fatalf("failed publish must roll back, got %q err=%v", id, err)
	}
	if err := pub.Publish(ctx, &tabular.Table{Name: "unknown_table", Columns: []string{"a"}}); err == nil {
		t.Fatalf("expected error for table missing from the schema")
	}
}

func TestNewDefaultsPath(t *testing.T) {
	t.Chdir(t.TempDir())
	pub, err := New(context.Background(), "")
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })
	if _, err := os.Stat(defaultPath); err != nil {
		t.Fatalf("expected %s to be created: %v", defaultPath, err)
	}
}
