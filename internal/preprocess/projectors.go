package preprocess

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mmrrcingest/internal/tabular"
	"mmrrcingest/pkg/domain"
)

// projection maps a raw catalog column onto a normalized column.
type projection struct {
	source string
	target string
}

var genotypeProjection = []projection{
	{domain.ColumnStrainID, domain.FieldStrainID},
	{domain.ColumnStrainDesignation, domain.FieldStrainDesignation},
	{domain.ColumnOtherNames, domain.FieldOtherNames},
	{domain.ColumnStrainType, domain.FieldStrainType},
	{domain.ColumnState, domain.FieldState},
	{domain.ColumnMutationType, domain.FieldMutationType},
	{domain.ColumnChromosome, domain.FieldChromosome},
	{domain.ColumnSDSURL, domain.FieldSDSURL},
	{domain.ColumnAcceptedDate, domain.FieldAcceptedDate},
	{domain.ColumnResearchAreas, domain.FieldResearchAreas},
	{domain.ColumnPubMedIDs, domain.FieldPubMedIDs},
	{domain.ColumnMPTIDs, domain.FieldMPTIDsRaw},
}

var alleleProjection = []projection{
	{domain.ColumnAlleleAccessionID, domain.FieldAlleleID},
	{domain.ColumnAlleleSymbol, domain.FieldAlleleSymbol},
	{domain.ColumnAlleleName, domain.FieldAlleleName},
	{domain.ColumnStrainID, domain.FieldStrainID},
	{domain.ColumnMutationType, domain.FieldMutationType},
	{domain.ColumnChromosome, domain.FieldChromosome},
}

// Phenotype codes are MP ontology CURIEs. A label is the text immediately
// before "[<code>]" that contains neither a pipe nor an open bracket.
const (
	phenotypeCodePattern  = `MP:\d+`
	phenotypeLabelPrefix  = `([^|\[]+)\s*\[`
	phenotypeLabelPostfix = `\]`
)

// ProjectGenotypes returns one row per distinct non-empty strain id. All
// descriptive columns come from the strain's earliest row in source order.
func ProjectGenotypes(ctx context.Context, db *sql.DB, table string) (*tabular.Table, error) {
	strain := quoteIdent(domain.ColumnStrainID)
	query := fmt.Sprintf(`SELECT %s
FROM %s r
JOIN (
	SELECT MIN(%s) AS first_row
	FROM %s
	WHERE %s IS NOT NULL AND %s <> ''
	GROUP BY %s
) g ON r.%s = g.first_row
ORDER BY r.%s`,
		selectList("r.", genotypeProjection),
		quoteIdent(table),
		quoteIdent(rowNumColumn), quoteIdent(table), strain, strain, strain,
		quoteIdent(rowNumColumn),
		strain)
	return queryTable(ctx, db, domain.TableGenotypes, domain.GenotypeColumns, query)
}

// ProjectAlleleAssociations returns the distinct allele/strain rows whose
// allele accession id is present and non-empty.
func ProjectAlleleAssociations(ctx context.Context, db *sql.DB, table string) (*tabular.Table, error) {
	allele := quoteIdent(domain.ColumnAlleleAccessionID)
	order := make([]string, 0, len(domain.AlleleToGenotypeColumns))
	order = append(order, quoteIdent(domain.FieldStrainID), quoteIdent(domain.FieldAlleleID))
	for _, c := range domain.AlleleToGenotypeColumns {
		if c != domain.FieldStrainID && c != domain.FieldAlleleID {
			order = append(order, quoteIdent(c))
		}
	}
	query := fmt.Sprintf(`SELECT DISTINCT %s
FROM %s
WHERE %s IS NOT NULL AND %s <> ''
ORDER BY %s`,
		selectList("", alleleProjection),
		quoteIdent(table),
		allele, allele,
		strings.Join(order, ", "))
	return queryTable(ctx, db, domain.TableAlleleToGenotype, domain.AlleleToGenotypeColumns, query)
}

// ProjectPhenotypeAssociations explodes the free-text phenotype column into one
// row per (strain, MP code) and recovers each code's label from the same text.
// Codes whose label cannot be recovered keep a NULL label.
func ProjectPhenotypeAssociations(ctx context.Context, db *sql.DB, table string) (*tabular.Table, error) {
	raw := quoteIdent(domain.ColumnMPTIDs)
	query := fmt.Sprintf(`WITH exploded AS (
	SELECT r.%s AS strain_id, j.value AS phenotype_id, r.%s AS raw
	FROM %s r, json_each(%s(r.%s, '%s')) j
	WHERE r.%s IS NOT NULL AND r.%s <> ''
)
SELECT DISTINCT
	strain_id AS %s,
	phenotype_id AS %s,
	NULLIF(trim(%s(raw, '%s' || phenotype_id || '%s', 1)), '') AS %s
FROM exploded
ORDER BY 1, 2, 3`,
		quoteIdent(domain.ColumnStrainID), raw,
		quoteIdent(table), fnRegexpExtractAll, raw, phenotypeCodePattern,
		raw, raw,
		quoteIdent(domain.FieldStrainID),
		quoteIdent(domain.FieldPhenotypeID),
		fnRegexpExtract, phenotypeLabelPrefix, phenotypeLabelPostfix, quoteIdent(domain.FieldPhenotypeLabel))
	return queryTable(ctx, db, domain.TableGenotypeToPhenotype, domain.GenotypeToPhenotypeColumns, query)
}

func selectList(qualifier string, cols []projection) string {
	parts := make([]string, len(cols))
	for i, p := range cols {
		parts[i] = qualifier + quoteIdent(p.source) + " AS " + quoteIdent(p.target)
	}
	return strings.Join(parts, ", ")
}

// QueryTable materializes an arbitrary query into a Table named name whose
// columns are the query's result columns. NULL cells become "".
func QueryTable(ctx context.Context, db *sql.DB, name, query string, args ...any) (*tabular.Table, error) {
	return queryTable(ctx, db, name, nil, query, args...)
}

// queryTable materializes a query into a Table; NULL cells become "". A nil
// columns slice takes the header from the result set.
func queryTable(ctx context.Context, db *sql.DB, name string, columns []string, query string, args ...any) (*tabular.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()
	got, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", name, err)
	}
	if columns == nil {
		columns = got
	}
	if len(got) != len(columns) {
		return nil, fmt.Errorf("project %s: query returned %d columns, want %d", name, len(got), len(columns))
	}
	out := &tabular.Table{Name: name, Columns: append([]string(nil), columns...)}
	cells := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("project %s: scan: %w", name, err)
		}
		rec := make([]string, len(columns))
		for i, c := range cells {
			rec[i] = c.String
		}
		out.Rows = append(out.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project %s: %w", name, err)
	}
	return out, nil
}
