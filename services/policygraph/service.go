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
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/analyzer"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/graph"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/policy"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/statute"
)

// Snapshot is one immutable build of the contract graph.
//
// Findings hold every diagnostic from load, extraction, analysis, build,
// and validation, in that order. Ordering is stable: each stream keeps
// its own list during the parallel phase and the lists are concatenated
// at the join.
type Snapshot struct {
	Graph    *graph.Graph
	Findings []finding.Finding
	BuiltAt  time.Time
}

// Service owns the pipeline and the built snapshot.
//
// Thread Safety: Build is called once at startup; after it returns, the
// snapshot is immutable and every query method is safe for concurrent use
// without locking on the read path.
type Service struct {
	cfg      ServiceConfig
	mappings MappingsConfig

	mu       sync.Mutex
	snapshot *Snapshot
}

// NewService creates a Service with the given configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	svc := &Service{cfg: cfg}
	if cfg.MappingsPath != "" {
		m, err := LoadMappings(cfg.MappingsPath)
		if err != nil {
			return nil, err
		}
		svc.mappings = m
	}
	return svc, nil
}

// streamResult carries one input stream's output across the join barrier.
// Each stream owns its result exclusively until the errgroup Wait.
type streamResult[T any] struct {
	data     T
	findings []finding.Finding
	failed   bool
}

// Build runs the pipeline and stores the snapshot.
//
// The three input streams (statute load, section extraction, test
// analysis) have no data dependency on each other and run in parallel.
// A stream whose source is missing or unreadable degrades to an empty
// stream plus a finding; only the loss of all three is fatal, because the
// engine then has nothing to build. Build may be called once per process.
func (s *Service) Build(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		return ErrAlreadyBuilt
	}

	if s.cfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.BuildTimeout)
		defer cancel()
	}

	logger := slog.With("component", "policygraph.build")
	start := time.Now()

	var statutes streamResult[*statute.Registry]
	var sections streamResult[policy.ExtractResult]
	var tests streamResult[[]analyzer.TestUnit]
	var meta graph.Meta

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reg, fs, err := statute.LoadJSONL(s.cfg.StatutePath)
		if err != nil {
			logger.Warn("statute table unavailable", "path", s.cfg.StatutePath, "error", err)
			statutes.failed = true
			statutes.findings = []finding.Finding{finding.Errorf(finding.KindMalformedRecord,
				"statute table unavailable: %v", err)}
			return nil
		}
		statutes.data = reg
		statutes.findings = append(fs, reg.Validate()...)
		return nil
	})
	g.Go(func() error {
		contract, err := policy.LoadContract(s.cfg.ContractPath)
		if err != nil {
			logger.Warn("contract unavailable", "path", s.cfg.ContractPath, "error", err)
			sections.failed = true
			sections.findings = []finding.Finding{finding.Errorf(finding.KindMalformedRecord,
				"contract unavailable: %v", err)}
			return nil
		}
		sections.data = policy.Extract(contract)
		sections.findings = sections.data.Findings
		sections.data.Findings = nil
		meta = contractMeta(contract)
		return nil
	})
	g.Go(func() error {
		units, fs, err := analyzer.New(s.mappings.Analyzer).Analyze(ctx, s.cfg.TestsDir)
		if err != nil {
			logger.Warn("test sources unavailable", "dir", s.cfg.TestsDir, "error", err)
			tests.failed = true
			tests.findings = []finding.Finding{finding.Errorf(finding.KindParseFailure,
				"test sources unavailable: %v", err)}
			return nil
		}
		tests.data = units
		tests.findings = fs
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("input phase: %w", err)
	}

	if statutes.failed && sections.failed && tests.failed {
		return ErrNoInputs
	}

	// Join: concatenate the isolated finding lists in pipeline order.
	findings := make([]finding.Finding, 0,
		len(statutes.findings)+len(sections.findings)+len(tests.findings))
	findings = append(findings, statutes.findings...)
	findings = append(findings, sections.findings...)
	findings = append(findings, tests.findings...)

	input := graph.BuildInput{
		Meta:     meta,
		Sections: sections.data.Sections,
		Quirks:   sections.data.Quirks,
		Tests:    tests.data,
		Mappings: s.mappings.Graph,
	}
	if statutes.data != nil {
		input.Statutes = statutes.data.All()
	}

	built, buildFindings := graph.Build(input)
	findings = append(findings, buildFindings...)
	findings = append(findings, graph.Validate(built, s.mappings.Graph.SensitiveSections)...)

	s.snapshot = &Snapshot{Graph: built, Findings: findings, BuiltAt: time.Now()}

	warnings, errors := finding.CountBySeverity(findings)
	logger.Info("graph built",
		"nodes", built.NumNodes(),
		"edges", built.NumEdges(),
		"warnings", warnings,
		"errors", errors,
		"elapsed", time.Since(start))
	return nil
}

// contractMeta copies the contract header into the graph payload.
func contractMeta(c *policy.Contract) graph.Meta {
	return graph.Meta{
		PlanName:      c.PlanName,
		PolicyNumber:  c.PolicyNumber,
		PlanType:      c.PlanType,
		SBCVersion:    c.SBCVersion,
		PlanYearStart: c.PlanYearStart,
		PlanYearEnd:   c.PlanYearEnd,
	}
}

// Snapshot returns the built snapshot, or nil before Build completes.
func (s *Service) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Ready reports whether the snapshot has been built.
func (s *Service) Ready() bool { return s.Snapshot() != nil }

// GraphPayload assembles the full-graph response.
func (s *Service) GraphPayload() (*GraphResponse, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNotBuilt
	}
	return &GraphResponse{
		Meta:     snap.Graph.Meta(),
		Nodes:    snap.Graph.Nodes(),
		Edges:    snap.Graph.Edges(),
		Stats:    snap.Graph.Stats(),
		Findings: snap.Findings,
	}, nil
}

// NodeDetail returns the detail payload for one node.
func (s *Service) NodeDetail(kind, id string) (*graph.Detail, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNotBuilt
	}
	nk := graph.NodeKind(kind)
	if !graph.ValidNodeKind(nk) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeKind, kind)
	}
	detail, ok := snap.Graph.NodeDetail(nk, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", graph.ErrNodeNotFound, kind, id)
	}
	return detail, nil
}

// FindingsPayload assembles the findings response.
func (s *Service) FindingsPayload() (*FindingsResponse, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNotBuilt
	}
	warnings, errors := finding.CountBySeverity(snap.Findings)
	return &FindingsResponse{
		Findings: snap.Findings,
		Warnings: warnings,
		Errors:   errors,
	}, nil
}
