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

	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
)

func TestValidate_CleanGraph(t *testing.T) {
	in := sampleInput()
	// Give every section a verifying test so nothing is flagged.
	in.Tests[0].SectionHints = []string{"emergency", "preventive_care", "laboratory"}
	g, buildFindings := Build(in)
	require.Empty(t, buildFindings)

	findings := Validate(g, []string{"emergency_services"})
	assert.Empty(t, findings)
}

func TestValidate_StatuteWithoutCitations(t *testing.T) {
	in := sampleInput()
	in.Statutes[0].Citations = nil
	g, _ := Build(in)

	findings := Validate(g, nil)

	var matched bool
	for _, f := range findings {
		if f.Kind == finding.KindValidation && f.Severity == finding.SeverityError {
			assert.Equal(t, "statute NSA has no citations", f.Message)
			assert.Equal(t, "statute", f.NodeKind)
			assert.Equal(t, "NSA", f.NodeID)
			matched = true
		}
	}
	assert.True(t, matched)
}

func TestValidate_SensitiveSectionWithoutGoverns(t *testing.T) {
	in := sampleInput()
	g, _ := Build(in)

	// laboratory has no governing statute in the sample input.
	findings := Validate(g, []string{"laboratory"})

	var messages []string
	for _, f := range findings {
		messages = append(messages, f.Message)
	}
	assert.Contains(t, messages,
		"section laboratory is regulatorily sensitive but no statute governs it")

	// emergency_services is governed by NSA, so listing it adds nothing.
	for _, f := range Validate(g, []string{"emergency_services"}) {
		assert.NotContains(t, f.Message, "regulatorily sensitive")
	}
}

func TestValidate_SectionWithoutVerifyingTest(t *testing.T) {
	g, _ := Build(sampleInput())

	findings := Validate(g, nil)

	var messages []string
	for _, f := range findings {
		assert.Equal(t, finding.SeverityWarning, f.Severity)
		messages = append(messages, f.Message)
	}
	// emergency_services and oop_max carry verifies edges; the other two
	// sections do not.
	assert.Equal(t, []string{
		"section preventive_care has no verifying test",
		"section laboratory has no verifying test",
	}, messages)
}

func TestValidate_EscalatesUnresolvedRefs(t *testing.T) {
	in := sampleInput()
	in.Statutes[0].Governs = []string{"surprise_billing"}
	g, buildFindings := Build(in)

	// At build time the dropped edge is only a warning.
	require.Len(t, buildFindings, 1)
	assert.Equal(t, finding.SeverityWarning, buildFindings[0].Severity)

	findings := Validate(g, nil)

	var errs []finding.Finding
	for _, f := range findings {
		if f.Severity == finding.SeverityError {
			errs = append(errs, f)
		}
	}
	require.Len(t, errs, 1)
	assert.Equal(t, finding.KindUnresolvedReference, errs[0].Kind)
	assert.Equal(t,
		`governs edge from statute/NSA to "surprise_billing" was dropped (unresolved)`,
		errs[0].Message)
}

func TestValidate_Idempotent(t *testing.T) {
	in := sampleInput()
	in.Statutes[1].Citations = nil
	g, _ := Build(in)

	first := Validate(g, []string{"laboratory"})
	second := Validate(g, []string{"laboratory"})
	assert.Equal(t, first, second)
	assert.True(t, g.Frozen())
}

func TestValidate_SensitiveMatchingIsNormalized(t *testing.T) {
	g, _ := Build(sampleInput())

	findings := Validate(g, []string{"OOP-Max"})
	for _, f := range findings {
		assert.NotContains(t, f.Message, "regulatorily sensitive",
			"oop_max is governed by ACA regardless of sensitive-list spelling")
	}

	findings = Validate(g, []string{"LABORATORY"})
	var flagged bool
	for _, f := range findings {
		if f.Message == "section laboratory is regulatorily sensitive but no statute governs it" {
			flagged = true
		}
	}
	assert.True(t, flagged)
}
