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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDetail_SectionNeighbors(t *testing.T) {
	g, _ := Build(sampleInput())

	d, ok := g.NodeDetail(KindSection, "emergency_services")
	require.True(t, ok)
	require.NotNil(t, d.Node)
	assert.Equal(t, "Emergency Services", d.Node.Label)
	require.NotNil(t, d.Node.Section)

	// Incoming follows edge insertion order: governs, then verifies, then
	// affects.
	require.Len(t, d.Incoming, 3)
	assert.Equal(t, NeighborRef{
		Kind: KindStatute, ID: "NSA", Label: "No Surprises Act", Edge: EdgeGoverns,
	}, d.Incoming[0])
	assert.Equal(t, KindTest, d.Incoming[1].Kind)
	assert.Equal(t, EdgeVerifies, d.Incoming[1].Edge)
	assert.Equal(t, NeighborRef{
		Kind: KindQuirk, ID: "er_followup_oon", Label: "ER Follow-Up OON", Edge: EdgeAffects,
	}, d.Incoming[2])

	// Sections are pure targets in this graph.
	assert.Empty(t, d.Outgoing)
}

func TestNodeDetail_StatuteOutgoing(t *testing.T) {
	g, _ := Build(sampleInput())

	d, ok := g.NodeDetail(KindStatute, "ACA")
	require.True(t, ok)
	assert.Empty(t, d.Incoming)
	require.Len(t, d.Outgoing, 2)
	assert.Equal(t, "preventive_care", d.Outgoing[0].ID)
	assert.Equal(t, "oop_max", d.Outgoing[1].ID)
	for _, ref := range d.Outgoing {
		assert.Equal(t, KindSection, ref.Kind)
		assert.Equal(t, EdgeGoverns, ref.Edge)
	}
}

func TestNodeDetail_IsolatedNodeHasEmptySlices(t *testing.T) {
	g := NewGraph(Meta{})
	require.NoError(t, g.AddNode(&Node{Kind: KindSection, ID: "dental", Label: "Dental"}))
	g.Freeze()

	d, ok := g.NodeDetail(KindSection, "dental")
	require.True(t, ok)

	// Empty, not nil: the payload marshals as [] rather than null.
	assert.NotNil(t, d.Incoming)
	assert.NotNil(t, d.Outgoing)
	assert.Empty(t, d.Incoming)
	assert.Empty(t, d.Outgoing)
}

func TestNodeDetail_Miss(t *testing.T) {
	g, _ := Build(sampleInput())

	d, ok := g.NodeDetail(KindSection, "absent")
	assert.False(t, ok)
	assert.Nil(t, d)

	// Kind namespaces are disjoint.
	_, ok = g.NodeDetail(KindStatute, "emergency_services")
	assert.False(t, ok)
}
