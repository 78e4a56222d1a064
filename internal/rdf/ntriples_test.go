package rdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mmrrcingest/pkg/domain"
)

func TestEncoderNode(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := NewEncoder(buf, nil)
	err := enc.Node(domain.Node{
		ID:           "MMRRC:000001-UNC",
		Category:     []string{domain.CategoryGenotype},
		Name:         `B6 "Tg1"`,
		Xref:         []string{"RRID:MMRRC_000001-UNC", "FOO:1"},
		InTaxon:      []string{domain.TaxonMouse},
		InTaxonLabel: domain.TaxonMouseLabel,
		ProvidedBy:   []string{domain.InforesMMRRC},
	})
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	s := "<https://www.mmrrc.org/catalog/sds.php?mmrrc_id=000001-UNC>"
	want := []string{
		s + " <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <https://w3id.org/biolink/vocab/Genotype> .",
		s + ` <http://www.w3.org/2000/01/rdf-schema#label> "B6 \"Tg1\"" .`,
		s + " <https://w3id.org/biolink/vocab/xref> <http://identifiers.org/RRID:MMRRC_000001-UNC> .",
		s + " <https://w3id.org/biolink/vocab/in_taxon> <http://purl.obolibrary.org/obo/NCBITaxon_10090> .",
		s + ` <https://w3id.org/biolink/vocab/in_taxon_label> "Mus musculus" .`,
		s + " <https://w3id.org/biolink/vocab/provided_by> <https://w3id.org/biolink/infores/mmrrc> .",
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("triples (-want +got):\n%s", diff)
	}
	if enc.Triples() != 6 || enc.Unresolved() != 1 {
		t.Fatalf("counts triples=%d unresolved=%d", enc.Triples(), enc.Unresolved())
	}
}

func TestEncoderEdgeReifiesAssociation(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := NewEncoder(buf, nil)
	edge := domain.NewAssociation("uuid:6f1c3a52-8d0e-4d3b-9a51-0c7e2f1b9a10", domain.CategoryGenotypeToPhenotypicFeatureAssociation,
		"MMRRC:000001-UNC", domain.PredicateHasPhenotype, "MP:0000063")
	if err := enc.Edge(edge); err != nil {
		t.Fatalf("edge: %v", err)
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	out := buf.String()
	direct := "<https://www.mmrrc.org/catalog/sds.php?mmrrc_id=000001-UNC> <https://w3id.org/biolink/vocab/has_phenotype> <http://purl.obolibrary.org/obo/MP_0000063> .\n"
	if !strings.HasPrefix(out, direct) {
		t.Fatalf("missing direct statement:\n%s", out)
	}
	assoc := "<urn:uuid:6f1c3a52-8d0e-4d3b-9a51-0c7e2f1b9a10>"
	for _, frag := range []string{
		assoc + " <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <https://w3id.org/biolink/vocab/GenotypeToPhenotypicFeatureAssociation> .",
		assoc + " <http://www.w3.org/1999/02/22-rdf-syntax-ns#object> <http://purl.obolibrary.org/obo/MP_0000063> .",
		assoc + " <https://w3id.org/biolink/vocab/aggregator_knowledge_source> <https://w3id.org/biolink/infores/monarchinitiative> .",
		assoc + ` <https://w3id.org/biolink/vocab/knowledge_level> "knowledge_assertion" .`,
		assoc + ` <https://w3id.org/biolink/vocab/agent_type> "manual_agent" .`,
	} {
		if !strings.Contains(out, frag+"\n") {
			t.Fatalf("missing %q in:\n%s", frag, out)
		}
	}
	if enc.Triples() != 9 || enc.Unresolved() != 0 {
		t.Fatalf("counts triples=%d unresolved=%d", enc.Triples(), enc.Unresolved())
	}
}

func TestEncoderSkipsUnknownPrefixes(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := NewEncoder(buf, nil)
	edge := domain.NewAssociation("uuid:1", domain.CategoryGenotypeToVariantAssociation, "MMRRC:1", domain.PredicateHasSequenceVariant, "ZZZ:9")
	if err := enc.Edge(edge); err != nil {
		t.Fatalf("edge: %v", err)
	}
	if err := enc.Node(domain.Node{ID: "nocolon"}); err != nil {
		t.Fatalf("node: %v", err)
	}
	_ = enc.Flush()
	if buf.Len() != 0 || enc.Unresolved() != 2 {
		t.Fatalf("expected nothing written and 2 unresolved, got %q unresolved=%d", buf.String(), enc.Unresolved())
	}
}

func TestExpand(t *testing.T) {
	enc := NewEncoder(&bytes.Buffer{}, map[string]string{"X": "http://x.org/"})
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"X:1", "http://x.org/1", true},
		{"https://example.org/a", "https://example.org/a", true},
		{"X:", "", false},
		{"X:has space", "http://x.org/has space", false},
		{"Y:1", "", false},
	}
	for _, c := range cases {
		got, ok := enc.Expand(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("Expand(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
