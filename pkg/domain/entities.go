// Package domain defines the biolink record shapes and the fixed provenance
// values emitted by the MMRRC ingest.
package domain

// Biolink categories assigned to emitted records.
const (
	CategoryGenotype                               = "biolink:Genotype"
	CategoryGenotypeToVariantAssociation           = "biolink:GenotypeToVariantAssociation"
	CategoryGenotypeToPhenotypicFeatureAssociation = "biolink:GenotypeToPhenotypicFeatureAssociation"
)

// Biolink predicates used by the association edges.
const (
	PredicateHasSequenceVariant = "biolink:has_sequence_variant"
	PredicateHasPhenotype       = "biolink:has_phenotype"
)

// KnowledgeLevel classifies the epistemic status of an edge.
type KnowledgeLevel string

// AgentType classifies the agent that generated an edge.
type AgentType string

const (
	// KnowledgeAssertion marks a curated statement asserted by the source.
	KnowledgeAssertion KnowledgeLevel = "knowledge_assertion"
	// ManualAgent marks a statement produced by human curation.
	ManualAgent AgentType = "manual_agent"
)

// Provenance constants shared by every record of this ingest.
const (
	// InforesMMRRC is the primary knowledge source for all edges.
	InforesMMRRC = "infores:mmrrc"
	// InforesMonarch is the aggregating knowledge source.
	InforesMonarch = "infores:monarchinitiative"
	// TaxonMouse is the NCBI taxon every MMRRC strain belongs to.
	TaxonMouse = "NCBITaxon:10090"
	// TaxonMouseLabel is the display label of TaxonMouse.
	TaxonMouseLabel = "Mus musculus"
	// UUIDScheme prefixes generated edge identifiers.
	UUIDScheme = "uuid:"
)

// Node carries the KGX node slots populated by this ingest.
type Node struct {
	ID           string   `json:"id"`
	Category     []string `json:"category"`
	Name         string   `json:"name,omitempty"`
	Xref         []string `json:"xref,omitempty"`
	InTaxon      []string `json:"in_taxon,omitempty"`
	InTaxonLabel string   `json:"in_taxon_label,omitempty"`
	ProvidedBy   []string `json:"provided_by,omitempty"`
}

// Edge carries the KGX association slots populated by this ingest.
type Edge struct {
	ID                        string         `json:"id"`
	Category                  []string       `json:"category"`
	Subject                   string         `json:"subject"`
	Predicate                 string         `json:"predicate"`
	Object                    string         `json:"object"`
	PrimaryKnowledgeSource    string         `json:"primary_knowledge_source"`
	AggregatorKnowledgeSource []string       `json:"aggregator_knowledge_source,omitempty"`
	KnowledgeLevel            KnowledgeLevel `json:"knowledge_level"`
	AgentType                 AgentType      `json:"agent_type"`
}

// Genotype is a mouse strain node keyed by its MMRRC stock identifier.
type Genotype struct {
	Node
}

// GenotypeToVariantAssociation links a genotype to an allele it carries.
type GenotypeToVariantAssociation struct {
	Edge
}

// GenotypeToPhenotypicFeatureAssociation links a genotype to an observed
// Mammalian Phenotype term.
type GenotypeToPhenotypicFeatureAssociation struct {
	Edge
}

// NewAssociation fills the provenance slots shared by every edge of this
// ingest. Callers supply identity and the subject/predicate/object triple.
func NewAssociation(id, category, subject, predicate, object string) Edge {
	return Edge{
		ID:                        id,
		Category:                  []string{category},
		Subject:                   subject,
		Predicate:                 predicate,
		Object:                    object,
		PrimaryKnowledgeSource:    InforesMMRRC,
		AggregatorKnowledgeSource: []string{InforesMonarch},
		KnowledgeLevel:            KnowledgeAssertion,
		AgentType:                 ManualAgent,
	}
}
