// Package preprocess normalizes the denormalized MMRRC catalog into the
// genotypes, allele_to_genotype, and genotype_to_phenotype relations.
//
// The catalog is loaded into an in-memory SQLite database with every column
// typed TEXT; the projections are set-based SQL over that table.
package preprocess

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"mmrrcingest/internal/logging"
	"mmrrcingest/internal/tabular"
)

// CatalogTable is the default name of the loaded raw catalog.
const CatalogTable = "mmrrc"

// rowNumColumn records source order for first-seen tie-breaks.
const rowNumColumn = "__row_num"

const sniffBytes = 64 * 1024

// ErrUnparsable is returned when the input is not delimited text with a header row.
var ErrUnparsable = errors.New("preprocess: input is not delimited text with a header row")

var sqlOpen = sql.Open

// OpenDB returns a single-connection in-memory SQLite database with the regex
// helpers available. Every :memory: connection is its own database, so the
// pool is pinned to one connection.
func OpenDB(ctx context.Context) (*sql.DB, error) {
	if err := registerFunctions(); err != nil {
		return nil, err
	}
	db, err := sqlOpen("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// LoadOptions configures Load and LoadReader.
type LoadOptions struct {
	// Table names the created table; empty selects CatalogTable.
	Table string
	// Delimiter separates fields; zero detects comma or tab from the header.
	Delimiter rune
	// RequiredColumns are added as all-NULL columns when the header lacks them.
	RequiredColumns []string
	Logger          *zap.Logger
}

// LoadResult describes a loaded table.
type LoadResult struct {
	Table   string
	Columns []string
	Rows    int
}

// Load reads the delimited file at path into a new TEXT-typed table.
func Load(ctx context.Context, db *sql.DB, path string, opts LoadOptions) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()
	res, err := LoadReader(ctx, db, f, opts)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load %s: %w", path, err)
	}
	return res, nil
}

// LoadReader reads a delimited stream into a new TEXT-typed table, replacing
// any table of the same name. Empty cells are stored as NULL.
func LoadReader(ctx context.Context, db *sql.DB, r io.Reader, opts LoadOptions) (LoadResult, error) {
	log := logging.OrNop(opts.Logger)
	table := opts.Table
	if table == "" {
		table = CatalogTable
	}
	br := bufio.NewReaderSize(r, sniffBytes)
	delim := opts.Delimiter
	if delim == 0 {
		head, _ := br.Peek(sniffBytes)
		delim = tabular.SniffDelimiter(head)
	}
	rd, err := tabular.NewReader(br, delim)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	columns := normalizeHeader(rd.Header())
	fileColumns := len(columns)
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[strings.ToLower(c)] = true
	}
	for _, c := range opts.RequiredColumns {
		if !present[strings.ToLower(c)] {
			log.Warn("input is missing column; treating as empty", zap.String("table", table), zap.String("column", c))
			columns = append(columns, c)
			present[strings.ToLower(c)] = true
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return LoadResult{}, fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return LoadResult{}, fmt.Errorf("drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, columns)); err != nil {
		return LoadResult{}, fmt.Errorf("create %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL(table, columns[:fileColumns]))
	if err != nil {
		return LoadResult{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, fileColumns+1)
	n := 0
	for {
		rec, err := rd.Record()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return LoadResult{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
		}
		n++
		args[0] = n
		for i, v := range rec {
			if v == "" {
				args[i+1] = nil
			} else {
				args[i+1] = v
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return LoadResult{}, fmt.Errorf("insert line %d: %w", rd.Line(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return LoadResult{}, fmt.Errorf("commit load: %w", err)
	}
	log.Debug("loaded table", zap.String("table", table), zap.Int("rows", n), zap.Int("columns", len(columns)))
	return LoadResult{Table: table, Columns: columns, Rows: n}, nil
}

// normalizeHeader names blank columns and suffixes duplicates so every column
// is addressable. SQLite identifiers are case-insensitive, so duplicates are
// detected case-insensitively.
func normalizeHeader(header []string) []string {
	seen := map[string]bool{rowNumColumn: true}
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column%d", i)
		}
		base := name
		for k := 1; seen[strings.ToLower(name)]; k++ {
			name = fmt.Sprintf("%s_%d", base, k)
		}
		seen[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

func createTableSQL(table string, columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	b.WriteString(quoteIdent(rowNumColumn))
	b.WriteString(" INTEGER")
	for _, c := range columns {
		b.WriteString(", ")
		b.WriteString(quoteIdent(c))
		b.WriteString(" TEXT")
	}
	b.WriteString(")")
	return b.String()
}

func insertSQL(table string, columns []string) string {
	names := make([]string, 0, len(columns)+1)
	marks := make([]string, 0, len(columns)+1)
	names = append(names, quoteIdent(rowNumColumn))
	marks = append(marks, "?")
	for _, c := range columns {
		names = append(names, quoteIdent(c))
		marks = append(marks, "?")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
