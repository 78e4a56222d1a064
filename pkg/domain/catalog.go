package domain

// Column names of the raw MMRRC catalog export. Names are case-sensitive.
const (
	ColumnStrainID          = "STRAIN/STOCK_ID"
	ColumnStrainDesignation = "STRAIN/STOCK_DESIGNATION"
	ColumnOtherNames        = "OTHER_NAMES"
	ColumnStrainType        = "STRAIN_TYPE"
	ColumnState             = "STATE"
	ColumnMutationType      = "MUTATION_TYPE"
	ColumnChromosome        = "CHROMOSOME"
	ColumnSDSURL            = "SDS_URL"
	ColumnAcceptedDate      = "ACCEPTED_DATE"
	ColumnResearchAreas     = "RESEARCH_AREAS"
	ColumnPubMedIDs         = "PUBMED_IDS"
	ColumnAlleleAccessionID = "MGI_ALLELE_ACCESSION_ID"
	ColumnAlleleSymbol      = "ALLELE_SYMBOL"
	ColumnAlleleName        = "ALLELE_NAME"
	ColumnMPTIDs            = "MPT_IDS"
)

// CatalogColumns lists every raw column the projections reference.
var CatalogColumns = []string{
	ColumnStrainID,
	ColumnStrainDesignation,
	ColumnOtherNames,
	ColumnStrainType,
	ColumnState,
	ColumnMutationType,
	ColumnChromosome,
	ColumnSDSURL,
	ColumnAcceptedDate,
	ColumnResearchAreas,
	ColumnPubMedIDs,
	ColumnAlleleAccessionID,
	ColumnAlleleSymbol,
	ColumnAlleleName,
	ColumnMPTIDs,
}

// Names of the normalized relations written by preprocessing.
const (
	TableGenotypes           = "genotypes"
	TableAlleleToGenotype    = "allele_to_genotype"
	TableGenotypeToPhenotype = "genotype_to_phenotype"
)

// Normalized column names.
const (
	FieldStrainID          = "strain_id"
	FieldStrainDesignation = "strain_designation"
	FieldOtherNames        = "other_names"
	FieldStrainType        = "strain_type"
	FieldState             = "state"
	FieldMutationType      = "mutation_type"
	FieldChromosome        = "chromosome"
	FieldSDSURL            = "sds_url"
	FieldAcceptedDate      = "accepted_date"
	FieldResearchAreas     = "research_areas"
	FieldPubMedIDs         = "pubmed_ids"
	FieldMPTIDsRaw         = "mpt_ids_raw"
	FieldAlleleID          = "allele_id"
	FieldAlleleSymbol      = "allele_symbol"
	FieldAlleleName        = "allele_name"
	FieldPhenotypeID       = "phenotype_id"
	FieldPhenotypeLabel    = "phenotype_label"
)

// GenotypeColumns is the header of the genotypes relation.
var GenotypeColumns = []string{
	FieldStrainID,
	FieldStrainDesignation,
	FieldOtherNames,
	FieldStrainType,
	FieldState,
	FieldMutationType,
	FieldChromosome,
	FieldSDSURL,
	FieldAcceptedDate,
	FieldResearchAreas,
	FieldPubMedIDs,
	FieldMPTIDsRaw,
}

// AlleleToGenotypeColumns is the header of the allele_to_genotype relation.
var AlleleToGenotypeColumns = []string{
	FieldAlleleID,
	FieldAlleleSymbol,
	FieldAlleleName,
	FieldStrainID,
	FieldMutationType,
	FieldChromosome,
}

// GenotypeToPhenotypeColumns is the header of the genotype_to_phenotype relation.
var GenotypeToPhenotypeColumns = []string{
	FieldStrainID,
	FieldPhenotypeID,
	FieldPhenotypeLabel,
}

// TableFile returns the object key a normalized relation is written under.
func TableFile(table string) string { return table + ".csv" }
