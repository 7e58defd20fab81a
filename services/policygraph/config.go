// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policygraph

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/analyzer"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/graph"
)

// ServiceConfig locates the three input sources and the mapping tables.
type ServiceConfig struct {
	// StatutePath is the JSONL statute table.
	StatutePath string `validate:"required"`

	// ContractPath is the benefit-section contract YAML.
	ContractPath string `validate:"required"`

	// TestsDir holds the Python verification test sources.
	TestsDir string `validate:"required"`

	// MappingsPath is the declared mapping-table YAML. Optional: without
	// it the pipeline still runs, with empty tables and correspondingly
	// more findings.
	MappingsPath string

	// BuildTimeout bounds the startup pipeline. The build is expected to
	// finish in well under a second; the timeout is an operational
	// safeguard, not a correctness requirement.
	BuildTimeout time.Duration
}

// DefaultServiceConfig returns the conventional repository layout.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		StatutePath:  "data/statutes.jsonl",
		ContractPath: "data/contract.yaml",
		TestsDir:     "tests",
		MappingsPath: "data/mappings.yaml",
		BuildTimeout: 30 * time.Second,
	}
}

// MappingsConfig is the single declared-configuration document holding
// every table the pipeline would otherwise have to guess from naming
// conventions: per-file risk categories, explicit class→section links,
// service→section correspondence, identifier aliases, and the
// regulatorily sensitive section list.
type MappingsConfig struct {
	Analyzer analyzer.Config `yaml:",inline"`
	Graph    graph.Mappings  `yaml:",inline"`
}

// LoadMappings reads and checks the mapping tables.
//
// An unreadable or undecodable mappings file is an error: unlike the
// three input sources, this file is part of the deployment, and running
// with silently empty tables when one was configured would misclassify
// every test file.
func LoadMappings(path string) (MappingsConfig, error) {
	var m MappingsConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read mappings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("decode mappings: %w", err)
	}
	if len(m.Analyzer.RiskCategories) == 0 {
		return m, fmt.Errorf("mappings %s declares no risk_categories", path)
	}
	return m, nil
}

// Validate checks the service configuration.
func (c ServiceConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("service config: %w", err)
	}
	return nil
}
