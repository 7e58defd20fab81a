// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
)

func TestExtract_SectionsAndQuirks(t *testing.T) {
	c, err := ParseContract([]byte(minimalContract))
	require.NoError(t, err)

	res := Extract(c)
	assert.Empty(t, res.Findings)

	require.Len(t, res.Sections, 3)
	assert.Equal(t, "deductibles", res.Sections[0].ID)
	assert.Equal(t, 0, res.Sections[0].Depth)
	assert.Equal(t, "emergency_services", res.Sections[1].ID)
	assert.Equal(t, []string{"er_quirk"}, res.Sections[1].QuirkIDs)
	assert.Equal(t, "emergency_services_er", res.Sections[2].ID)
	assert.Equal(t, 1, res.Sections[2].Depth)

	require.Len(t, res.Quirks, 2)
	assert.Equal(t, "er_quirk", res.Quirks[0].ID)
	assert.Equal(t, "emergency_services", res.Quirks[0].DeclaredIn)
	assert.Equal(t, "lab_work_trap", res.Quirks[1].ID)
	assert.Empty(t, res.Quirks[1].DeclaredIn, "plan-level quirk has no declaring section")
}

func TestExtract_Deterministic(t *testing.T) {
	c, err := ParseContract([]byte(minimalContract))
	require.NoError(t, err)

	first := Extract(c)
	second := Extract(c)
	assert.Equal(t, first.Sections, second.Sections)
	assert.Equal(t, first.Quirks, second.Quirks)
}

func TestExtract_DuplicateSectionKeepsFirst(t *testing.T) {
	c, err := ParseContract([]byte(`
plan_name: Test PPO
policy_number: TST-001
sections:
  - name: dental
    label: First Dental
  - name: dental
    label: Second Dental
`))
	require.NoError(t, err)

	res := Extract(c)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, "First Dental", res.Sections[0].Label)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, finding.SeverityWarning, res.Findings[0].Severity)
	assert.Equal(t, finding.KindDuplicateRecord, res.Findings[0].Kind)
	assert.Equal(t, "dental", res.Findings[0].NodeID)
}

func TestExtract_DuplicateQuirkKeepsFirst(t *testing.T) {
	c, err := ParseContract([]byte(`
plan_name: Test PPO
policy_number: TST-001
sections:
  - name: laboratory
    quirks:
      - id: lab_work_trap
        name: Declared On Section
network_quirks:
  - id: lab_work_trap
    name: Declared At Plan Level
`))
	require.NoError(t, err)

	res := Extract(c)
	require.Len(t, res.Quirks, 1)
	assert.Equal(t, "Declared On Section", res.Quirks[0].Name)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, finding.KindDuplicateRecord, res.Findings[0].Kind)
}

func TestSectionID(t *testing.T) {
	assert.Equal(t, "", SectionID(nil))
	assert.Equal(t, "dental", SectionID([]string{"dental"}))
	assert.Equal(t, "dental_orthodontia", SectionID([]string{"dental", "orthodontia"}))
	assert.Equal(t, "out_of_pocket_max", SectionID([]string{"Out-of-Pocket Max"}))
	assert.Equal(t, "plan_v2_limits", SectionID([]string{"plan.v2", "limits"}))
}
