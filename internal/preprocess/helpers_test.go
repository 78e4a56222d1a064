package preprocess

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"mmrrcingest/internal/tabular"
	"mmrrcingest/pkg/domain"
)

// catalogRow describes one raw row by column; unset columns are empty.
type catalogRow map[string]string

// writeCatalog renders rows under the full catalog header and returns the file path.
func writeCatalog(t *testing.T, rows ...catalogRow) string {
	t.Helper()
	table := &tabular.Table{Columns: domain.CatalogColumns}
	for _, r := range rows {
		rec := make([]string, len(domain.CatalogColumns))
		for i, c := range domain.CatalogColumns {
			rec[i] = r[c]
		}
		table.Rows = append(table.Rows, rec)
	}
	payload, err := tabular.Encode(table, tabular.Comma)
	if err != nil {
		t.Fatalf("encode catalog: %v", err)
	}
	return writeFile(t, "catalog.csv", string(payload))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// loadCatalog opens a fresh database and loads the given rows.
func loadCatalog(t *testing.T, rows ...catalogRow) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := OpenDB(ctx)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := Load(ctx, db, writeCatalog(t, rows...), LoadOptions{RequiredColumns: domain.CatalogColumns}); err != nil {
		t.Fatalf("load: %v", err)
	}
	return db
}

func sampleCatalog() []catalogRow {
	first := catalogRow{
		domain.ColumnStrainID:          "MMRRC:000001-UNC",
		domain.ColumnStrainDesignation: "B6-Tg1",
		domain.ColumnOtherNames:        "RRID:MMRRC_000001-UNC",
		domain.ColumnStrainType:        "MSR",
		domain.ColumnState:             "LV",
		domain.ColumnMutationType:      "TG",
		domain.ColumnChromosome:        "5",
		domain.ColumnSDSURL:            "https://www.mmrrc.org/catalog/sds.php?mmrrc_id=1",
		domain.ColumnAcceptedDate:      "2000-01-01",
		domain.ColumnResearchAreas:     "Cancer",
		domain.ColumnPubMedIDs:         "123",
		domain.ColumnAlleleAccessionID: "MGI:1000001",
		domain.ColumnAlleleSymbol:      "Tg1",
		domain.ColumnAlleleName:        "transgene 1",
		domain.ColumnMPTIDs:            "decreased bone mineral density [MP:0000063]",
	}
	second := catalogRow{
		domain.ColumnStrainID:          "MMRRC:000001-UNC",
		domain.ColumnStrainDesignation: "B6-Tg1-later",
		domain.ColumnStrainType:        "MSR",
		domain.ColumnMutationType:      "TG",
		domain.ColumnChromosome:        "5",
		domain.ColumnAlleleAccessionID: "MGI:1000002",
		domain.ColumnAlleleSymbol:      "Tg2",
		domain.ColumnAlleleName:        "transgene 2",
		domain.ColumnMPTIDs:            "decreased bone mineral density [MP:0000063]",
	}
	return []catalogRow{
		first,
		second,
		{
			domain.ColumnStrainID:          "MMRRC:000002-MU",
			domain.ColumnStrainDesignation: "C57BL/6-Foo, Bar",
			domain.ColumnMutationType:      "KO",
			domain.ColumnChromosome:        "X",
			domain.ColumnMPTIDs:            "abnormal eye morphology [MP:0002092] | decreased body weight [MP:0001262]",
		},
		{
			domain.ColumnStrainID:          "MMRRC:000003-UCD",
			domain.ColumnStrainDesignation: "Strain3",
		},
		{
			domain.ColumnStrainDesignation: "Orphan",
			domain.ColumnAlleleAccessionID: "MGI:9",
			domain.ColumnAlleleSymbol:      "Orph",
			domain.ColumnAlleleName:        "orphan",
			domain.ColumnMPTIDs:            "lethality [MP:0008762]",
		},
		first,
	}
}
