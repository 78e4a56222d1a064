package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mmrrcingest/internal/entitymodel/sqlbundle"
	"mmrrcingest/internal/infra/persistence/postgres/testutil"
	"mmrrcingest/internal/tabular"
	"mmrrcingest/pkg/domain"
)

func phenotypes(rows ...[]string) *tabular.Table {
	return &tabular.Table{Name: domain.TableGenotypeToPhenotype, Columns: domain.GenotypeToPhenotypeColumns, Rows: rows}
}

func openStub(t *testing.T) (*Publisher, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	var gotDriver, gotDSN string
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dsn
		return db, nil
	})
	t.Cleanup(restore)
	pub, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if gotDriver != "pgx" || gotDSN != defaultDSN {
		t.Fatalf("unexpected open %s %s", gotDriver, gotDSN)
	}
	return pub, conn
}

func TestNewAppliesPostgresBundle(t *testing.T) {
	_, conn := openStub(t)
	want := sqlbundle.SplitStatements(sqlbundle.Postgres())
	if diff := cmp.Diff(want, conn.Execs); diff != "" {
		t.Fatalf("ddl (-want +got):\n%s", diff)
	}
}

func TestPublishReplacesRows(t *testing.T) {
	ctx := context.Background()
	pub, conn := openStub(t)
	first := phenotypes([]string{"MMRRC:000001-UNC", "MP:0000001", "small ears"}, []string{"MMRRC:000001-UNC", "MP:0000002", ""})
	if err := pub.Publish(ctx, first); err != nil {
		t.Fatalf("publish: %v", err)
	}
	rows := conn.Tables[domain.TableGenotypeToPhenotype]
	if len(rows) != 2 || rows[1]["phenotype_label"] != nil {
		t.Fatalf("unexpected rows %v", rows)
	}
	if err := pub.Publish(ctx, phenotypes([]string{"MMRRC:000002-MU", "MP:0000003", "x"})); err != nil {
		t.Fatalf("republish: %v", err)
	}
	rows = conn.Tables[domain.TableGenotypeToPhenotype]
	if len(rows) != 1 || rows[0]["strain_id"] != "MMRRC:000002-MU" {
		t.Fatalf("publish should replace prior rows, got %v", rows)
	}
	var sawInsert bool
	for _, stmt := range conn.Execs {
		if strings.Contains(stmt, "VALUES ($1, $2, $3)") {
			sawInsert = true
		}
	}
	if !sawInsert {
		t.Fatalf("expected postgres placeholders in %v", conn.Execs)
	}
	if pub.DB() == nil {
		t.Fatalf("expected db handle")
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPublishRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	pub, conn := openStub(t)
	if err := pub.Publish(ctx, phenotypes([]string{"MMRRC:1", "MP:1", "a"})); err != nil {
		t.Fatalf("publish: %v", err)
	}
	genotypes := &tabular.Table{Name: domain.TableGenotypes, Columns: []string{domain.FieldStrainID}, Rows: [][]string{{"MMRRC:1"}}}
	conn.FailTables = map[string]bool{domain.TableGenotypes: true}
	err := pub.Publish(ctx, phenotypes([]string{"MMRRC:2", "MP:2", "b"}), genotypes)
	if err == nil || !strings.Contains(err.Error(), "insert genotypes row 1") {
		t.Fatalf("expected insert failure, got %v", err)
	}
	if rows := conn.Tables[domain.TableGenotypeToPhenotype]; len(rows) != 1 || rows[0]["strain_id"] != "MMRRC:1" {
		t.Fatalf("failed publish should leave previous rows, got %v", rows)
	}
	conn.FailTables = nil
	conn.FailCommit = true
	if err := pub.Publish(ctx, phenotypes()); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit failure, got %v", err)
	}
	conn.FailCommit = false
	conn.FailBegin = true
	if err := pub.Publish(ctx, phenotypes()); err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin failure, got %v", err)
	}
	conn.FailBegin = false
	if err := pub.Publish(ctx, &tabular.Table{}); err == nil {
		t.Fatalf("expected unnamed table error")
	}
}

func TestNewErrors(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("no driver") })
	if _, err := New(context.Background(), "postgres://x"); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
	restore()

	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore = OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := New(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}

	db, conn = testutil.NewStubDB()
	conn.FailExec = true
	restore2 := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore2()
	if _, err := New(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "execute ddl") {
		t.Fatalf("expected ddl error, got %v", err)
	}
}
