package rdf

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/metrics"
)

func TestExportWritesGzippedNTriples(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	nodes := "id\tcategory\tname\txref\tin_taxon\tin_taxon_label\tprovided_by\n" +
		"MMRRC:000001-UNC\tbiolink:Genotype\tB6-Tg1\t\tNCBITaxon:10090\tMus musculus\tinfores:mmrrc\n"
	edges := "id\tcategory\tsubject\tpredicate\tobject\tprimary_knowledge_source\taggregator_knowledge_source\tknowledge_level\tagent_type\n" +
		"uuid:1\tbiolink:GenotypeToVariantAssociation\tMMRRC:000001-UNC\tbiolink:has_sequence_variant\tMGI:1000001\tinfores:mmrrc\tinfores:monarchinitiative\tknowledge_assertion\tmanual_agent\n"
	for k, v := range map[string]string{"mmrrc_genotypes_nodes.tsv": nodes, "mmrrc_allele_to_genotype_edges.tsv": edges, "broken_edges.tsv": "id\ta\tb\n1\t2\n3\t4\t5\t6\n"} {
		if _, err := blob.Replace(ctx, store, k, []byte(v), blob.PutOptions{}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	res, err := Export(ctx, Options{Store: store, Metrics: metrics.New()})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if diff := cmp.Diff([]string{"mmrrc_allele_to_genotype.nt.gz", "mmrrc_genotypes.nt.gz"}, res.Written); diff != "" {
		t.Fatalf("written (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"broken"}, res.Failed); diff != "" {
		t.Fatalf("failed (-want +got):\n%s", diff)
	}
	_, rc, err := store.Get(ctx, "mmrrc_genotypes.nt.gz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	zr, err := gzip.NewReader(rc)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 node statements, got %d:\n%s", len(lines), body)
	}
	info, err := store.Head(ctx, "mmrrc_genotypes.nt.gz")
	if err != nil || info.ContentType != blob.ContentTypeNTriple {
		t.Fatalf("unexpected info %+v err=%v", info, err)
	}
}

func TestExportWithoutInputs(t *testing.T) {
	res, err := Export(context.Background(), Options{Store: blob.NewMemory()})
	if err != nil || len(res.Written) != 0 {
		t.Fatalf("unexpected result %+v err=%v", res, err)
	}
	if _, err := Export(context.Background(), Options{}); err == nil {
		t.Fatalf("expected missing store error")
	}
}
