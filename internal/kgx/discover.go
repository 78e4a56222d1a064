package kgx

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mmrrcingest/internal/blob"
)

// Pair groups the KGX files of one ingest. Either key may be empty.
type Pair struct {
	Name     string
	NodesKey string
	EdgesKey string
}

// Discover lists top-level *_nodes.tsv and *_edges.tsv keys in the store and
// groups them by ingest name, ordered by name. A missing counterpart leaves
// the corresponding key empty.
func Discover(ctx context.Context, store blob.Store) ([]Pair, error) {
	infos, err := store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	byName := map[string]*Pair{}
	get := func(name string) *Pair {
		p, ok := byName[name]
		if !ok {
			p = &Pair{Name: name}
			byName[name] = p
		}
		return p
	}
	for _, info := range infos {
		key := info.Key
		if strings.Contains(key, "/") {
			continue
		}
		switch {
		case strings.HasSuffix(key, NodesSuffix):
			get(strings.TrimSuffix(key, NodesSuffix)).NodesKey = key
		case strings.HasSuffix(key, EdgesSuffix):
			get(strings.TrimSuffix(key, EdgesSuffix)).EdgesKey = key
		}
	}
	pairs := make([]Pair, 0, len(byName))
	for _, p := range byName {
		pairs = append(pairs, *p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })
	return pairs, nil
}
