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
)

const minimalContract = `
plan_name: Test PPO
policy_number: TST-001
sections:
  - name: deductibles
    fields:
      in_network_individual: 1500
      in_network_family: 3000
      out_of_network_individual: 3000
  - name: emergency_services
    label: Emergency Services
    fields:
      prudent_layperson_standard: true
    quirks:
      - id: er_quirk
        name: ER Quirk
        affected_services: [emergency]
    sections:
      - name: er
        fields:
          copay: 350
network_quirks:
  - id: lab_work_trap
    name: Lab Work Trap
    affected_services: [laboratory]
`

func TestParseContract_Basic(t *testing.T) {
	c, err := ParseContract([]byte(minimalContract))
	require.NoError(t, err)

	assert.Equal(t, "Test PPO", c.PlanName)
	assert.Equal(t, "TST-001", c.PolicyNumber)
	require.Len(t, c.Sections, 2)
	assert.Equal(t, "deductibles", c.Sections[0].Name)
	require.Len(t, c.Sections[1].Children, 1)
	assert.Equal(t, "er", c.Sections[1].Children[0].Name)
	require.Len(t, c.NetworkQuirks, 1)
	assert.Equal(t, "lab_work_trap", c.NetworkQuirks[0].ID)
}

func TestParseContract_FieldOrderPreserved(t *testing.T) {
	c, err := ParseContract([]byte(minimalContract))
	require.NoError(t, err)

	fields := c.Sections[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, "in_network_individual", fields[0].Name)
	assert.Equal(t, "1500", fields[0].Value)
	assert.Equal(t, "in_network_family", fields[1].Name)
	assert.Equal(t, "out_of_network_individual", fields[2].Name)
}

func TestParseContract_RejectsMissingPlanName(t *testing.T) {
	_, err := ParseContract([]byte(`
policy_number: TST-001
sections:
  - name: deductibles
`))
	assert.Error(t, err)
}

func TestParseContract_RejectsEmptySections(t *testing.T) {
	_, err := ParseContract([]byte(`
plan_name: Test PPO
policy_number: TST-001
sections: []
`))
	assert.Error(t, err)
}

func TestParseContract_RejectsQuirkWithoutID(t *testing.T) {
	_, err := ParseContract([]byte(`
plan_name: Test PPO
policy_number: TST-001
sections:
  - name: deductibles
network_quirks:
  - name: Nameless Quirk
`))
	assert.Error(t, err)
}

func TestParseContract_RejectsInvalidYAML(t *testing.T) {
	_, err := ParseContract([]byte("plan_name: [unclosed"))
	assert.Error(t, err)
}

// orderVisitor records the visit sequence for order assertions.
type orderVisitor struct {
	events []string
}

func (o *orderVisitor) VisitSection(path []string, s *Section) error {
	o.events = append(o.events, "section:"+SectionID(path))
	return nil
}

func (o *orderVisitor) VisitQuirk(path []string, q *Quirk) error {
	o.events = append(o.events, "quirk:"+q.ID)
	return nil
}

func (o *orderVisitor) VisitLeaf(path []string, f *Field) error {
	o.events = append(o.events, "leaf:"+f.Name)
	return nil
}

func TestWalk_DocumentOrder(t *testing.T) {
	c, err := ParseContract([]byte(minimalContract))
	require.NoError(t, err)

	v := &orderVisitor{}
	require.NoError(t, Walk(c, v))

	assert.Equal(t, []string{
		"section:deductibles",
		"leaf:in_network_individual",
		"leaf:in_network_family",
		"leaf:out_of_network_individual",
		"section:emergency_services",
		"leaf:prudent_layperson_standard",
		"quirk:er_quirk",
		"section:emergency_services_er",
		"leaf:copay",
		"quirk:lab_work_trap",
	}, v.events)
}

func TestSection_DisplayLabel(t *testing.T) {
	s := &Section{Name: "oop_max", Label: "Out-of-Pocket Maximum"}
	assert.Equal(t, "Out-of-Pocket Maximum", s.DisplayLabel())

	s = &Section{Name: "mental_health"}
	assert.Equal(t, "Mental Health", s.DisplayLabel())

	s = &Section{Name: "er"}
	assert.Equal(t, "Er", s.DisplayLabel())
}
