// Package rdf converts KGX node and edge files into gzipped N-Triples.
package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"mmrrcingest/pkg/domain"
)

// Well-known IRIs.
const (
	rdfNS     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	rdfsNS    = "http://www.w3.org/2000/01/rdf-schema#"
	biolinkNS = "https://w3id.org/biolink/vocab/"

	rdfType      = rdfNS + "type"
	rdfSubject   = rdfNS + "subject"
	rdfPredicate = rdfNS + "predicate"
	rdfObject    = rdfNS + "object"
	rdfsLabel    = rdfsNS + "label"
)

// DefaultPrefixes maps the CURIE prefixes this ingest emits to IRI namespaces.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"biolink":   biolinkNS,
		"infores":   "https://w3id.org/biolink/infores/",
		"MMRRC":     "https://www.mmrrc.org/catalog/sds.php?mmrrc_id=",
		"MGI":       "http://identifiers.org/mgi/MGI:",
		"MP":        "http://purl.obolibrary.org/obo/MP_",
		"NCBITaxon": "http://purl.obolibrary.org/obo/NCBITaxon_",
		"RRID":      "http://identifiers.org/RRID:",
		"uuid":      "urn:uuid:",
	}
}

// Encoder writes N-Triples statements for biolink records. CURIEs whose
// prefix is not mapped are skipped and counted.
type Encoder struct {
	w          *bufio.Writer
	prefixes   map[string]string
	triples    int
	unresolved int
	err        error
}

// NewEncoder returns an Encoder writing to w. A nil prefix map selects DefaultPrefixes.
func NewEncoder(w io.Writer, prefixes map[string]string) *Encoder {
	if prefixes == nil {
		prefixes = DefaultPrefixes()
	}
	return &Encoder{w: bufio.NewWriter(w), prefixes: prefixes}
}

// Triples returns the number of statements written.
func (e *Encoder) Triples() int { return e.triples }

// Unresolved returns the number of CURIEs that could not be expanded.
func (e *Encoder) Unresolved() int { return e.unresolved }

// Expand turns a CURIE into an IRI. Values that already look like http(s)
// IRIs are returned unchanged.
func (e *Encoder) Expand(curie string) (string, bool) {
	if strings.HasPrefix(curie, "http://") || strings.HasPrefix(curie, "https://") {
		return curie, validIRI(curie)
	}
	prefix, local, ok := strings.Cut(curie, ":")
	if !ok || local == "" {
		return "", false
	}
	ns, ok := e.prefixes[prefix]
	if !ok {
		return "", false
	}
	iri := ns + local
	return iri, validIRI(iri)
}

// Node writes the statements describing n.
func (e *Encoder) Node(n domain.Node) error {
	subject, ok := e.resolve(n.ID)
	if !ok {
		return e.err
	}
	for _, c := range n.Category {
		e.iriObject(subject, rdfType, c)
	}
	e.literal(subject, rdfsLabel, n.Name)
	for _, x := range n.Xref {
		e.iriObject(subject, biolinkNS+"xref", x)
	}
	for _, t := range n.InTaxon {
		e.iriObject(subject, biolinkNS+"in_taxon", t)
	}
	e.literal(subject, biolinkNS+"in_taxon_label", n.InTaxonLabel)
	for _, p := range n.ProvidedBy {
		e.iriObject(subject, biolinkNS+"provided_by", p)
	}
	return e.err
}

// Edge writes the direct subject/predicate/object statement and, when the
// edge id resolves, a reified association carrying its provenance.
func (e *Encoder) Edge(edge domain.Edge) error {
	subject, ok := e.resolve(edge.Subject)
	if !ok {
		return e.err
	}
	predicate, ok := e.resolve(edge.Predicate)
	if !ok {
		return e.err
	}
	object, ok := e.resolve(edge.Object)
	if !ok {
		return e.err
	}
	e.statement(subject, predicate, "<"+object+">")

	assoc, ok := e.resolve(edge.ID)
	if !ok {
		return e.err
	}
	for _, c := range edge.Category {
		e.iriObject(assoc, rdfType, c)
	}
	e.statement(assoc, rdfSubject, "<"+subject+">")
	e.statement(assoc, rdfPredicate, "<"+predicate+">")
	e.statement(assoc, rdfObject, "<"+object+">")
	if edge.PrimaryKnowledgeSource != "" {
		e.iriObject(assoc, biolinkNS+"primary_knowledge_source", edge.PrimaryKnowledgeSource)
	}
	for _, a := range edge.AggregatorKnowledgeSource {
		e.iriObject(assoc, biolinkNS+"aggregator_knowledge_source", a)
	}
	e.literal(assoc, biolinkNS+"knowledge_level", string(edge.KnowledgeLevel))
	e.literal(assoc, biolinkNS+"agent_type", string(edge.AgentType))
	return e.err
}

// Flush writes any buffered output.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func (e *Encoder) resolve(curie string) (string, bool) {
	if curie == "" {
		return "", false
	}
	iri, ok := e.Expand(curie)
	if !ok {
		e.unresolved++
	}
	return iri, ok
}

func (e *Encoder) iriObject(subject, predicate, curie string) {
	if obj, ok := e.resolve(curie); ok {
		e.statement(subject, predicate, "<"+obj+">")
	}
}

func (e *Encoder) literal(subject, predicate, value string) {
	if value == "" {
		return
	}
	e.statement(subject, predicate, `"`+escapeLiteral(value)+`"`)
}

func (e *Encoder) statement(subject, predicate, object string) {
	if e.err != nil {
		return
	}
	if _, err := fmt.Fprintf(e.w, "<%s> <%s> %s .\n", subject, predicate, object); err != nil {
		e.err = err
		return
	}
	e.triples++
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func escapeLiteral(s string) string { return literalEscaper.Replace(s) }

// validIRI rejects characters N-Triples forbids inside IRIREF.
func validIRI(iri string) bool {
	for _, r := range iri {
		if r <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", r) {
			return false
		}
	}
	return true
}
