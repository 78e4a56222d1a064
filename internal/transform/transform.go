// Package transform maps one normalized row onto zero or one biolink record.
// Transforms are pure apart from identifier generation; a row missing a
// required field yields nothing.
package transform

import (
	"strings"

	"github.com/google/uuid"

	"mmrrcingest/internal/tabular"
	"mmrrcingest/pkg/domain"
)

// newID returns a fresh edge identifier.
var newID = func() string { return domain.UUIDScheme + uuid.NewString() }

// Genotype maps a genotypes row to a Genotype node keyed by strain id.
func Genotype(row tabular.Row) []domain.Genotype {
	id := row.Get(domain.FieldStrainID)
	if id == "" {
		return nil
	}
	var xref []string
	if other := row.Get(domain.FieldOtherNames); other != "" {
		xref = []string{other}
	}
	return []domain.Genotype{{Node: domain.Node{
		ID:           id,
		Category:     []string{domain.CategoryGenotype},
		Name:         row.Get(domain.FieldStrainDesignation),
		Xref:         xref,
		InTaxon:      []string{domain.TaxonMouse},
		InTaxonLabel: domain.TaxonMouseLabel,
		ProvidedBy:   []string{domain.InforesMMRRC},
	}}}
}

// AlleleToGenotype maps an allele_to_genotype row to a genotype has_sequence_variant allele edge.
func AlleleToGenotype(row tabular.Row) []domain.GenotypeToVariantAssociation {
	strain, allele := row.Get(domain.FieldStrainID), row.Get(domain.FieldAlleleID)
	if strain == "" || allele == "" {
		return nil
	}
	return []domain.GenotypeToVariantAssociation{{Edge: domain.NewAssociation(
		newID(),
		domain.CategoryGenotypeToVariantAssociation,
		strain,
		domain.PredicateHasSequenceVariant,
		allele,
	)}}
}

// GenotypeToPhenotype maps a genotype_to_phenotype row to a genotype
// has_phenotype MP term edge. Rows whose label is blank are dropped.
func GenotypeToPhenotype(row tabular.Row) []domain.GenotypeToPhenotypicFeatureAssociation {
	strain, phenotype := row.Get(domain.FieldStrainID), row.Get(domain.FieldPhenotypeID)
	if strain == "" || phenotype == "" {
		return nil
	}
	if strings.TrimSpace(row.Get(domain.FieldPhenotypeLabel)) == "" {
		return nil
	}
	return []domain.GenotypeToPhenotypicFeatureAssociation{{Edge: domain.NewAssociation(
		newID(),
		domain.CategoryGenotypeToPhenotypicFeatureAssociation,
		strain,
		domain.PredicateHasPhenotype,
		phenotype,
	)}}
}
