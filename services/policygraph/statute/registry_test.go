// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package statute

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statutes.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSONL_Basic(t *testing.T) {
	path := writeTable(t, `
# comment line
// another comment
{"id": "ACA", "name": "Affordable Care Act", "references": [{"statute": "Patient Protection and Affordable Care Act", "citation": "42 USC § 18001 et seq."}], "governs": ["preventive_care", "oop_max"]}
{"id": "NSA", "name": "No Surprises Act", "references": [{"statute": "No Surprises Act", "citation": "Public Law 116-260"}], "governs": ["emergency_services"]}
`)

	reg, findings, err := LoadJSONL(path)
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"ACA", "NSA"}, reg.IDs())

	aca, ok := reg.Get("ACA")
	require.True(t, ok)
	assert.Equal(t, "Affordable Care Act", aca.Name)
	assert.Equal(t, "42 USC § 18001 et seq.", aca.Citations[0].Legal)

	assert.Equal(t, []string{"preventive_care", "oop_max"}, reg.Governs("ACA"))
	assert.Equal(t, []string{"NSA"}, reg.StatutesFor("emergency_services"))
	assert.Empty(t, reg.StatutesFor("dental"))
}

func TestLoadJSONL_MalformedLineIsIsolated(t *testing.T) {
	path := writeTable(t, `
{"id": "ACA", "name": "Affordable Care Act"}
{not json at all
{"name": "no id here"}
{"id": "NSA", "name": "No Surprises Act"}
`)

	reg, findings, err := LoadJSONL(path)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len(), "good records survive bad neighbors")
	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, finding.SeverityError, f.Severity)
		assert.Equal(t, finding.KindMalformedRecord, f.Kind)
	}
}

func TestLoadJSONL_DuplicateLastWriteWins(t *testing.T) {
	path := writeTable(t, `
{"id": "ACA", "name": "First Version", "governs": ["oop_max"]}
{"id": "NSA", "name": "No Surprises Act", "governs": ["emergency_services"]}
{"id": "ACA", "name": "Second Version", "governs": ["preventive_care"]}
`)

	reg, findings, err := LoadJSONL(path)
	require.NoError(t, err)

	require.Len(t, findings, 1)
	assert.Equal(t, finding.SeverityWarning, findings[0].Severity)
	assert.Equal(t, finding.KindDuplicateRecord, findings[0].Kind)
	assert.Equal(t, "ACA", findings[0].NodeID)

	aca, ok := reg.Get("ACA")
	require.True(t, ok)
	assert.Equal(t, "Second Version", aca.Name)

	// The replaced record's governs entries must not linger in the inverse
	// index, and the re-added record moves to the end of table order.
	assert.Empty(t, reg.StatutesFor("oop_max"))
	assert.Equal(t, []string{"ACA"}, reg.StatutesFor("preventive_care"))
	assert.Equal(t, []string{"NSA", "ACA"}, reg.IDs())
}

func TestLoadJSONL_MissingFile(t *testing.T) {
	_, _, err := LoadJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestRegistry_Validate(t *testing.T) {
	path := writeTable(t, `
{"id": "ACA", "name": "Affordable Care Act", "references": [{"statute": "Patient Protection and Affordable Care Act", "citation": "42 USC § 18001 et seq."}]}
{"id": "COBRA", "name": "COBRA"}
{"id": "ERISA", "name": "ERISA", "references": [{"statute": "", "citation": ""}]}
`)

	reg, _, err := LoadJSONL(path)
	require.NoError(t, err)

	findings := reg.Validate()
	require.Len(t, findings, 3)

	assert.Equal(t, finding.SeverityError, findings[0].Severity)
	assert.Equal(t, "COBRA", findings[0].NodeID)

	warnings, errors := finding.CountBySeverity(findings)
	assert.Equal(t, 2, warnings, "ERISA's empty name and citation")
	assert.Equal(t, 1, errors, "COBRA's missing references")
}

func TestRegistry_GovernsReturnsCopy(t *testing.T) {
	path := writeTable(t, `{"id": "ACA", "name": "ACA", "governs": ["oop_max"]}`)
	reg, _, err := LoadJSONL(path)
	require.NoError(t, err)

	got := reg.Governs("ACA")
	got[0] = "mutated"
	assert.Equal(t, []string{"oop_max"}, reg.Governs("ACA"))
	assert.Nil(t, reg.Governs("UNKNOWN"))
}
