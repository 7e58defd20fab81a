// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package policy models the machine-readable contract and extracts its
// benefit sections.
//
// The contract is a tree built from a closed set of shape variants:
// sections, quirks, and leaf values. Traversal is an explicit visitor over
// those variants rather than reflection, so adding a new benefit category
// to the contract file requires no extractor change.
//
// # Ownership Model
//
// A loaded Contract is immutable. The extractor reads it and produces
// value data (SectionNode, QuirkNode); nothing in the extractor output
// points back into the contract tree.
package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Element is the closed set of node shapes in the contract tree.
//
// Implementations are Section, Quirk, and Field only. The sealed method
// keeps the set closed so the visitor dispatch stays exhaustive.
type Element interface {
	// Accept dispatches to the Visitor method for this variant.
	Accept(v Visitor) error
}

// Visitor receives one callback per contract tree variant.
//
// Walk drives the visitor in document order: a section first, then its
// leaf fields, then its attached quirks, then its child sections.
type Visitor interface {
	// VisitSection is called for every section-shaped element. path holds
	// the section names from the root to this element, inclusive.
	VisitSection(path []string, s *Section) error

	// VisitQuirk is called for every quirk attached to the section most
	// recently visited, and for plan-level quirks with an empty path.
	VisitQuirk(path []string, q *Quirk) error

	// VisitLeaf is called for every leaf value on the section most
	// recently visited.
	VisitLeaf(path []string, f *Field) error
}

// Field is a leaf value on a section: a single named contract datum.
type Field struct {
	Name  string
	Value string
}

// Accept implements Element.
func (f *Field) Accept(v Visitor) error { return v.VisitLeaf(nil, f) }

// Fields is an ordered list of leaf values.
//
// It unmarshals from a YAML mapping while preserving document order;
// section identifiers must never depend on map iteration order.
type Fields []Field

// UnmarshalYAML decodes a mapping node into ordered fields.
func (fs *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fields: expected a mapping, got %v", node.Kind)
	}
	out := make(Fields, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, Field{
			Name:  node.Content[i].Value,
			Value: node.Content[i+1].Value,
		})
	}
	*fs = out
	return nil
}

// Quirk is a documented network edge case with asymmetric member risk.
type Quirk struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
	Risk        string `yaml:"risk"`

	// AffectedServices names the plan services the quirk impacts. These
	// are service names, not section identifiers; the graph builder maps
	// them to sections through the declared service→section table.
	AffectedServices []string `yaml:"affected_services"`
}

// Accept implements Element.
func (q *Quirk) Accept(v Visitor) error { return v.VisitQuirk(nil, q) }

// Section is one benefit section of the contract.
type Section struct {
	Name   string `yaml:"name" validate:"required"`
	Label  string `yaml:"label"`
	Fields Fields `yaml:"fields"`

	Quirks   []Quirk    `yaml:"quirks"`
	Children []*Section `yaml:"sections"`
}

// Accept implements Element.
func (s *Section) Accept(v Visitor) error { return v.VisitSection(nil, s) }

// Contract is the root of the benefit-section object graph.
type Contract struct {
	PlanName      string `yaml:"plan_name" validate:"required"`
	PolicyNumber  string `yaml:"policy_number" validate:"required"`
	GroupNumber   string `yaml:"group_number"`
	PlanType      string `yaml:"plan_type"`
	SBCVersion    string `yaml:"sbc_version"`
	EffectiveDate string `yaml:"effective_date"`
	PlanYearStart string `yaml:"plan_year_start"`
	PlanYearEnd   string `yaml:"plan_year_end"`

	Sections []*Section `yaml:"sections" validate:"required,min=1,dive"`

	// NetworkQuirks are plan-wide quirks not attached to any one section.
	NetworkQuirks []Quirk `yaml:"network_quirks" validate:"dive"`
}

// LoadContract reads and validates a contract YAML file.
//
// Validation here covers only structural requirements (a plan name,
// at least one section, quirk IDs present). Field-level benefit validation
// is the typed-data collaborator's job and deliberately out of scope.
func LoadContract(path string) (*Contract, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contract: %w", err)
	}
	return ParseContract(raw)
}

// ParseContract decodes a contract from YAML bytes.
func ParseContract(raw []byte) (*Contract, error) {
	var c Contract
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode contract: %w", err)
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("contract failed validation: %w", err)
	}
	return &c, nil
}

// Walk drives a Visitor over the contract tree in document order.
//
// Order is deterministic: sections as declared, and for each section its
// leaves, then quirks, then children. Plan-level network quirks are
// visited last with an empty path.
func Walk(c *Contract, v Visitor) error {
	for _, s := range c.Sections {
		if err := walkSection(nil, s, v); err != nil {
			return err
		}
	}
	for i := range c.NetworkQuirks {
		if err := v.VisitQuirk(nil, &c.NetworkQuirks[i]); err != nil {
			return err
		}
	}
	return nil
}

func walkSection(parent []string, s *Section, v Visitor) error {
	path := append(append([]string{}, parent...), s.Name)
	if err := v.VisitSection(path, s); err != nil {
		return err
	}
	for i := range s.Fields {
		if err := v.VisitLeaf(path, &s.Fields[i]); err != nil {
			return err
		}
	}
	for i := range s.Quirks {
		if err := v.VisitQuirk(path, &s.Quirks[i]); err != nil {
			return err
		}
	}
	for _, child := range s.Children {
		if err := walkSection(path, child, v); err != nil {
			return err
		}
	}
	return nil
}

// DisplayLabel returns the section's label, or a title-cased fallback
// derived from its name.
func (s *Section) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	words := strings.Split(s.Name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
