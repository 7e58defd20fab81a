// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package statute loads the regulatory statute table and provides lookup.
//
// The table is JSONL, one statute per line, appendable without touching
// any other record. The loader isolates faults per record: a corrupt line
// costs exactly one statute and one finding, never the whole load.
//
// # Usage
//
//	reg, findings, err := statute.LoadJSONL("statutes.jsonl")
//	reg.Get("MHPAEA")           // → *Statute
//	reg.Governs("ACA")          // → ["preventive_care", "oop_max"]
//	reg.StatutesFor("emergency") // → ["NSA"]
package statute

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
)

// Citation links a statute to one authorizing legal reference.
type Citation struct {
	// Statute is the full legal name, e.g. "Mental Health Parity and
	// Addiction Equity Act".
	Statute string `json:"statute"`

	// Legal is the statutory citation, e.g. "29 USC § 1185a".
	Legal string `json:"citation,omitempty"`

	// CFR is the optional regulatory-code reference, e.g. "45 CFR § 146.136".
	CFR string `json:"cfr,omitempty"`

	// EffectiveDate is an ISO-8601 date string; kept verbatim because the
	// graph only reports it, never computes with it.
	EffectiveDate string `json:"effective_date,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Statute is one loaded statute table record.
//
// Statutes are immutable once loaded: the registry hands out pointers, and
// callers must not mutate them.
type Statute struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Citations   []Citation `json:"references,omitempty"`

	// Governs lists the benefit-area identifiers this statute's record
	// declares authority over. Resolution to canonical section IDs is the
	// graph builder's job, not the loader's.
	Governs []string `json:"governs,omitempty"`
}

// Registry is the loaded, indexed statute table.
//
// Thread Safety: a Registry is immutable after LoadJSONL returns and safe
// for concurrent readers.
type Registry struct {
	byID  map[string]*Statute
	order []string

	// inverse maps benefit-area identifier → statute IDs, in table order.
	inverse map[string][]string
}

// LoadJSONL loads a statute table from the given path.
//
// One JSON object per line. Blank lines and lines starting with "#" or "//"
// are comments. A line that fails to decode, or decodes without an "id",
// is skipped with a MalformedRecord finding. A duplicate ID replaces the
// earlier record (last write wins) with a DuplicateRecord finding.
//
// Outputs:
//   - *Registry: the loaded table; never nil when err is nil, and may be
//     smaller than the file when records were skipped.
//   - []finding.Finding: one finding per skipped or collided record.
//   - error: non-nil only when the file itself cannot be read.
func LoadJSONL(path string) (*Registry, []finding.Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open statute table: %w", err)
	}
	defer f.Close()

	reg := &Registry{
		byID:    make(map[string]*Statute),
		inverse: make(map[string][]string),
	}
	var findings []finding.Finding

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		var st Statute
		if err := json.Unmarshal([]byte(line), &st); err != nil {
			findings = append(findings, finding.Errorf(finding.KindMalformedRecord,
				"statute table line %d: %v", lineNo, err))
			continue
		}
		if st.ID == "" {
			findings = append(findings, finding.Errorf(finding.KindMalformedRecord,
				"statute table line %d: record has no id", lineNo))
			continue
		}

		if _, exists := reg.byID[st.ID]; exists {
			findings = append(findings, finding.Warningf(finding.KindDuplicateRecord,
				"statute table line %d: duplicate statute %q, keeping the later record", lineNo, st.ID).
				WithNode("statute", st.ID))
			reg.remove(st.ID)
		}
		reg.add(&st)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read statute table: %w", err)
	}

	return reg, findings, nil
}

func (r *Registry) add(st *Statute) {
	r.byID[st.ID] = st
	r.order = append(r.order, st.ID)
	for _, area := range st.Governs {
		r.inverse[area] = append(r.inverse[area], st.ID)
	}
}

// remove drops a statute and rebuilds the order and inverse index without
// it. Only used for duplicate handling, so the O(n) rebuild is fine.
func (r *Registry) remove(id string) {
	delete(r.byID, id)
	order := r.order[:0]
	for _, existing := range r.order {
		if existing != id {
			order = append(order, existing)
		}
	}
	r.order = order
	for area, ids := range r.inverse {
		kept := ids[:0]
		for _, sid := range ids {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		if len(kept) == 0 {
			delete(r.inverse, area)
		} else {
			r.inverse[area] = kept
		}
	}
}

// Get returns the statute with the given ID.
func (r *Registry) Get(id string) (*Statute, bool) {
	st, ok := r.byID[id]
	return st, ok
}

// All returns all statutes in table order.
func (r *Registry) All() []*Statute {
	out := make([]*Statute, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// IDs returns all statute IDs in table order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of loaded statutes.
func (r *Registry) Len() int {
	return len(r.order)
}

// Governs returns the benefit-area identifiers a statute declares authority
// over, in record order. Unknown statute IDs return nil.
func (r *Registry) Governs(statuteID string) []string {
	st, ok := r.byID[statuteID]
	if !ok {
		return nil
	}
	out := make([]string, len(st.Governs))
	copy(out, st.Governs)
	return out
}

// StatutesFor returns the statute IDs that declare authority over the given
// benefit area, in table order.
func (r *Registry) StatutesFor(area string) []string {
	ids := r.inverse[area]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Validate checks the loaded table for internal gaps and returns findings.
//
// A statute with no citations at all is an error (the validator escalates
// this on the final report as well); a citation missing its statute name or
// legal reference is a warning. Validate never mutates the registry.
func (r *Registry) Validate() []finding.Finding {
	var findings []finding.Finding
	for _, id := range r.order {
		st := r.byID[id]
		if len(st.Citations) == 0 {
			findings = append(findings, finding.Errorf(finding.KindValidation,
				"statute %s has no regulatory references", id).WithNode("statute", id))
			continue
		}
		for i, c := range st.Citations {
			if c.Statute == "" {
				findings = append(findings, finding.Warningf(finding.KindValidation,
					"statute %s reference %d is missing the statute name", id, i).WithNode("statute", id))
			}
			if c.Legal == "" {
				findings = append(findings, finding.Warningf(finding.KindValidation,
					"statute %s reference %d is missing its citation", id, i).WithNode("statute", id))
			}
		}
	}
	return findings
}
