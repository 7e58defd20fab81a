// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

// NeighborRef is one directly connected node, seen from a detail query.
type NeighborRef struct {
	Kind  NodeKind `json:"kind"`
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Edge  EdgeKind `json:"edge"`
}

// Detail is the per-node payload: the node plus its neighbors in both
// edge directions, in edge insertion order.
type Detail struct {
	Node     *Node         `json:"node"`
	Incoming []NeighborRef `json:"incoming"`
	Outgoing []NeighborRef `json:"outgoing"`
}

// NodeDetail returns the detail payload for one node, or false when no
// node has that (kind, id) pair.
//
// Thread Safety: read-only; safe for concurrent use on a frozen graph.
func (g *Graph) NodeDetail(kind NodeKind, id string) (*Detail, bool) {
	key := NodeKey{Kind: kind, ID: id}
	node, ok := g.nodes[key]
	if !ok {
		return nil, false
	}

	d := &Detail{Node: node, Incoming: []NeighborRef{}, Outgoing: []NeighborRef{}}
	for _, idx := range g.incoming[key] {
		e := g.edges[idx]
		if from, ok := g.nodes[e.From]; ok {
			d.Incoming = append(d.Incoming, NeighborRef{
				Kind: from.Kind, ID: from.ID, Label: from.Label, Edge: e.Kind,
			})
		}
	}
	for _, idx := range g.outgoing[key] {
		e := g.edges[idx]
		if to, ok := g.nodes[e.To]; ok {
			d.Outgoing = append(d.Outgoing, NeighborRef{
				Kind: to.Kind, ID: to.ID, Label: to.Label, Edge: e.Kind,
			})
		}
	}
	return d, true
}
