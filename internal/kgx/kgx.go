// Package kgx encodes biolink nodes and edges as KGX TSV files.
//
// Each ingest writes <name>_nodes.tsv and/or <name>_edges.tsv. Multi-valued
// slots are joined with '|'.
package kgx

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mmrrcingest/internal/blob"
	"mmrrcingest/internal/tabular"
	"mmrrcingest/pkg/domain"
)

// File name suffixes identifying KGX node and edge files.
const (
	NodesSuffix = "_nodes.tsv"
	EdgesSuffix = "_edges.tsv"
)

// ListSeparator joins multi-valued cells.
const ListSeparator = "|"

// NodeColumns is the node file header.
var NodeColumns = []string{"id", "category", "name", "xref", "in_taxon", "in_taxon_label", "provided_by"}

// EdgeColumns is the edge file header.
var EdgeColumns = []string{
	"id", "category", "subject", "predicate", "object",
	"primary_knowledge_source", "aggregator_knowledge_source", "knowledge_level", "agent_type",
}

// NodesKey returns the node file key for an ingest.
func NodesKey(name string) string { return name + NodesSuffix }

// EdgesKey returns the edge file key for an ingest.
func EdgesKey(name string) string { return name + EdgesSuffix }

// Kind selects which files a Writer produces.
type Kind uint8

const (
	Nodes Kind = 1 << iota
	Edges
)

// Writer buffers records for one ingest and flushes them to a blob store.
type Writer struct {
	name  string
	kinds Kind
	nodes *tabular.Table
	edges *tabular.Table
}

// NewWriter returns a Writer producing the given kinds of files for ingest name.
func NewWriter(name string, kinds Kind) *Writer {
	return &Writer{
		name:  name,
		kinds: kinds,
		nodes: &tabular.Table{Name: NodesKey(name), Columns: NodeColumns},
		edges: &tabular.Table{Name: EdgesKey(name), Columns: EdgeColumns},
	}
}

// WriteNode buffers a node. It fails when the writer does not produce nodes.
func (w *Writer) WriteNode(n domain.Node) error {
	if w.kinds&Nodes == 0 {
		return fmt.Errorf("kgx: %s does not write nodes", w.name)
	}
	w.nodes.Rows = append(w.nodes.Rows, EncodeNode(n))
	return nil
}

// WriteEdge buffers an edge. It fails when the writer does not produce edges.
func (w *Writer) WriteEdge(e domain.Edge) error {
	if w.kinds&Edges == 0 {
		return fmt.Errorf("kgx: %s does not write edges", w.name)
	}
	w.edges.Rows = append(w.edges.Rows, EncodeEdge(e))
	return nil
}

// Counts returns the number of buffered nodes and edges.
func (w *Writer) Counts() (nodes, edges int) { return w.nodes.Len(), w.edges.Len() }

// Flush writes every declared file, header included even when empty, and
// returns the written keys.
func (w *Writer) Flush(ctx context.Context, store blob.Store) ([]string, error) {
	var keys []string
	for _, f := range []struct {
		kind  Kind
		table *tabular.Table
	}{{Nodes, w.nodes}, {Edges, w.edges}} {
		if w.kinds&f.kind == 0 {
			continue
		}
		payload, err := tabular.Encode(f.table, tabular.Tab)
		if err != nil {
			return keys, fmt.Errorf("encode %s: %w", f.table.Name, err)
		}
		_, err = blob.Replace(ctx, store, f.table.Name, payload, blob.PutOptions{
			ContentType: blob.ContentTypeTSV,
			Metadata:    map[string]string{"ingest": w.name, "records": strconv.Itoa(f.table.Len())},
		})
		if err != nil {
			return keys, err
		}
		keys = append(keys, f.table.Name)
	}
	return keys, nil
}

// EncodeNode renders a node in NodeColumns order.
func EncodeNode(n domain.Node) []string {
	return []string{n.ID, joinList(n.Category), n.Name, joinList(n.Xref), joinList(n.InTaxon), n.InTaxonLabel, joinList(n.ProvidedBy)}
}

// EncodeEdge renders an edge in EdgeColumns order.
func EncodeEdge(e domain.Edge) []string {
	return []string{
		e.ID, joinList(e.Category), e.Subject, e.Predicate, e.Object,
		e.PrimaryKnowledgeSource, joinList(e.AggregatorKnowledgeSource), string(e.KnowledgeLevel), string(e.AgentType),
	}
}

// DecodeNode reads a node from a KGX row.
func DecodeNode(r tabular.Row) domain.Node {
	return domain.Node{
		ID:           r.Get("id"),
		Category:     splitList(r.Get("category")),
		Name:         r.Get("name"),
		Xref:         splitList(r.Get("xref")),
		InTaxon:      splitList(r.Get("in_taxon")),
		InTaxonLabel: r.Get("in_taxon_label"),
		ProvidedBy:   splitList(r.Get("provided_by")),
	}
}

// DecodeEdge reads an edge from a KGX row.
func DecodeEdge(r tabular.Row) domain.Edge {
	return domain.Edge{
		ID:                        r.Get("id"),
		Category:                  splitList(r.Get("category")),
		Subject:                   r.Get("subject"),
		Predicate:                 r.Get("predicate"),
		Object:                    r.Get("object"),
		PrimaryKnowledgeSource:    r.Get("primary_knowledge_source"),
		AggregatorKnowledgeSource: splitList(r.Get("aggregator_knowledge_source")),
		KnowledgeLevel:            domain.KnowledgeLevel(r.Get("knowledge_level")),
		AgentType:                 domain.AgentType(r.Get("agent_type")),
	}
}

func joinList(vs []string) string { return strings.Join(vs, ListSeparator) }

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ListSeparator)
}
