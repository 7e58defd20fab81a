// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer statically recovers test structure from pytest-style
// Python source.
//
// The analyzer never executes the test suite. It parses each file with
// tree-sitter and recovers the shapes the graph cares about: test classes,
// their methods, per-method docstrings, and a best-effort link from each
// class to the benefit sections it exercises. Everything else in the file
// (helper functions, imports, fixtures) is skipped silently.
//
// Linkage is heuristic, since the tests are written by humans against a
// fixture object, so the analyzer degrades gracefully: a class with no
// recognizable section reference is still emitted, with an empty link set
// and an "unlinked test" finding. A file that fails to parse costs one
// finding and nothing else.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
)

// Risk categories a test file can declare. The set is closed; files the
// mapping table does not cover fall back to RiskUnknown with a finding.
const (
	RiskFinancial      = "financial"
	RiskCoverage       = "coverage"
	RiskRegulatory     = "regulatory"
	RiskCorrespondence = "correspondence"
	RiskUnknown        = "unknown"
)

// TestMethod is one recovered test method.
type TestMethod struct {
	Name string `json:"name"`

	// Docstring is the method docstring verbatim, or empty when absent.
	// Absence is a reporting fact, not an error.
	Docstring string `json:"risk"`
}

// TestUnit is one recovered test class.
type TestUnit struct {
	// ID derives from the source file and class path, e.g.
	// "test_regulatory.TestNoSurprisesAct".
	ID string `json:"id"`

	File      string       `json:"file"`
	Class     string       `json:"class_name"`
	Risk      string       `json:"risk_category"`
	Docstring string       `json:"docstring"`
	Methods   []TestMethod `json:"tests"`

	// SectionHints are the benefit-section identifiers the class appears
	// to exercise, in first-use order. They are candidates: canonical
	// resolution against extracted sections is the graph builder's job.
	SectionHints []string `json:"section_hints,omitempty"`
}

// Config declares the analyzer's mapping tables and conventions.
//
// Risk categories and explicit class links are declared configuration, not
// convention guesses (a new test file that is not in RiskCategories is
// flagged instead of silently classified).
type Config struct {
	// RiskCategories maps a file stem ("test_regulatory") to its risk
	// category. One category per file.
	RiskCategories map[string]string `yaml:"risk_categories"`

	// ClassSections maps a test class name to the section it verifies,
	// overriding the fixture heuristic. An explicit empty value marks a
	// deliberately cross-cutting class and suppresses the unlinked-test
	// finding.
	ClassSections map[string]string `yaml:"class_sections"`

	// FixtureParams are the test method parameter names treated as the
	// contract fixture when recovering attribute-chain hints.
	FixtureParams []string `yaml:"fixture_params"`

	// ClassPrefix and MethodPrefix are the pytest naming conventions.
	ClassPrefix  string `yaml:"class_prefix"`
	MethodPrefix string `yaml:"method_prefix"`
}

// DefaultConfig returns the pytest conventions and an empty mapping table.
func DefaultConfig() Config {
	return Config{
		RiskCategories: map[string]string{},
		ClassSections:  map[string]string{},
		FixtureParams:  []string{"policy"},
		ClassPrefix:    "Test",
		MethodPrefix:   "test_",
	}
}

// Analyzer recovers TestUnits from Python test source.
//
// Thread Safety: an Analyzer is immutable after New and safe for
// concurrent use; each parse creates its own tree-sitter parser.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer, filling unset config with defaults.
func New(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.RiskCategories == nil {
		cfg.RiskCategories = def.RiskCategories
	}
	if cfg.ClassSections == nil {
		cfg.ClassSections = def.ClassSections
	}
	if len(cfg.FixtureParams) == 0 {
		cfg.FixtureParams = def.FixtureParams
	}
	if cfg.ClassPrefix == "" {
		cfg.ClassPrefix = def.ClassPrefix
	}
	if cfg.MethodPrefix == "" {
		cfg.MethodPrefix = def.MethodPrefix
	}
	return &Analyzer{cfg: cfg}
}

// Analyze parses every test_*.py file under dir, in lexical order.
//
// Outputs:
//   - []TestUnit: recovered classes across all parsable files, ordered by
//     file then declaration position.
//   - []finding.Finding: one ParseFailure per unreadable or unparsable
//     file, plus unlinked-test and unmapped-risk findings.
//   - error: non-nil only when the directory itself cannot be listed.
func (a *Analyzer) Analyze(ctx context.Context, dir string) ([]TestUnit, []finding.Finding, error) {
	pattern := filepath.Join(dir, "test_*.py")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("list test sources: %w", err)
	}
	if _, statErr := os.Stat(dir); statErr != nil {
		return nil, nil, fmt.Errorf("test source dir: %w", statErr)
	}
	sort.Strings(paths)

	var units []TestUnit
	var findings []finding.Finding
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("analysis canceled: %w", err)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			findings = append(findings, finding.Errorf(finding.KindParseFailure,
				"%s: %v", filepath.Base(path), err))
			continue
		}
		fileUnits, fileFindings := a.AnalyzeFile(ctx, path, src)
		units = append(units, fileUnits...)
		findings = append(findings, fileFindings...)
	}
	return units, findings, nil
}

// AnalyzeFile recovers the TestUnits declared in one source file.
//
// A file that cannot be parsed produces a single ParseFailure finding and
// no units; it never fails the surrounding analysis.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, src []byte) ([]TestUnit, []finding.Finding) {
	start := time.Now()
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	classes, err := parseTestClasses(ctx, src, a.cfg)
	recordParse(ctx, base, time.Since(start), err == nil)
	if err != nil {
		return nil, []finding.Finding{finding.Errorf(finding.KindParseFailure,
			"%s: %v", base, err)}
	}

	risk, riskKnown := a.cfg.RiskCategories[stem]
	if !riskKnown {
		risk = RiskUnknown
	}

	var units []TestUnit
	var findings []finding.Finding
	if len(classes) > 0 && !riskKnown {
		findings = append(findings, finding.Warningf(finding.KindValidation,
			"test file %s has no declared risk category", base))
	}

	for _, cls := range classes {
		unit := TestUnit{
			ID:        stem + "." + cls.name,
			File:      base,
			Class:     cls.name,
			Risk:      risk,
			Docstring: cls.docstring,
			Methods:   cls.methods,
		}

		if override, ok := a.cfg.ClassSections[cls.name]; ok {
			// Declared mapping wins over the heuristic. Empty means the
			// class is deliberately cross-cutting.
			if override != "" {
				unit.SectionHints = []string{override}
			}
		} else {
			unit.SectionHints = cls.sectionHints
			if len(unit.SectionHints) == 0 {
				findings = append(findings, finding.Warningf(finding.KindUnlinkedTest,
					"test class %s references no recognizable benefit section", cls.name).
					WithNode("test", unit.ID))
			}
		}
		units = append(units, unit)
	}
	return units, findings
}
