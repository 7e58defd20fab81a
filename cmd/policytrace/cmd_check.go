// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/PolicyTrace/services/policygraph"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/graph"
)

// Exit codes for graph check.
const (
	CheckExitClean   = 0
	CheckExitErrors  = 1
	CheckExitFailure = 2
)

var (
	checkJSON bool

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Build the contract graph once and report findings",
		Long: `Runs the full build pipeline without starting a server, prints every
finding, and exits non-zero when any finding has error severity. Intended
for CI gates on contract or test changes.`,
		Run: runCheck,
	}
)

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false,
		"Emit findings as JSON instead of text")
}

// checkReport is the JSON payload for check --json.
type checkReport struct {
	Stats    graph.Stats       `json:"stats"`
	Findings []finding.Finding `json:"findings"`
	Warnings int               `json:"warnings"`
	Errors   int               `json:"errors"`
}

func runCheck(cmd *cobra.Command, args []string) {
	svc, err := policygraph.NewService(serviceConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(CheckExitFailure)
	}

	if err := svc.Build(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: build failed: %v\n", err)
		os.Exit(CheckExitFailure)
	}

	snap := svc.Snapshot()
	warnings, errors := finding.CountBySeverity(snap.Findings)

	if checkJSON {
		report := checkReport{
			Stats:    snap.Graph.Stats(),
			Findings: snap.Findings,
			Warnings: warnings,
			Errors:   errors,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: encode report: %v\n", err)
			os.Exit(CheckExitFailure)
		}
	} else {
		printCheckReport(snap, warnings, errors)
	}

	if errors > 0 {
		os.Exit(CheckExitErrors)
	}
	os.Exit(CheckExitClean)
}

// printCheckReport writes the human-readable report to stdout.
func printCheckReport(snap *policygraph.Snapshot, warnings, errors int) {
	stats := snap.Graph.Stats()
	fmt.Printf("Graph: %d statutes, %d sections, %d test classes (%d tests), %d quirks, %d edges\n",
		stats.Statutes, stats.Sections, stats.TestClasses, stats.TotalTests,
		stats.Quirks, stats.Edges)

	if len(snap.Findings) == 0 {
		fmt.Println("No findings.")
		return
	}

	fmt.Println()
	for _, f := range snap.Findings {
		fmt.Printf("  %s\n", f.String())
	}
	fmt.Printf("\n%d warning(s), %d error(s)\n", warnings, errors)
}
