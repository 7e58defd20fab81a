// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command policytrace builds the contract graph and serves it read-only.
//
// Usage:
//
//	policytrace serve --contract data/contract.yaml --port 8080
//	policytrace check --contract data/contract.yaml
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/policygraph/health
//
//	# Full graph with findings
//	curl http://localhost:8080/v1/policygraph/graph | jq
//
//	# One section with its adjacency
//	curl http://localhost:8080/v1/policygraph/node/section/emergency_services | jq
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/PolicyTrace/pkg/logging"
)

var (
	statutePath  string
	contractPath string
	testsDir     string
	mappingsPath string
	logFormat    string
	logDir       string
	debug        bool

	rootCmd = &cobra.Command{
		Use:   "policytrace",
		Short: "Contract graph engine for health insurance policy verification",
		Long: `PolicyTrace reconciles a regulatory statute table, a contract's
benefit sections, and a statically analyzed verification test suite into
one graph, then answers coverage questions about it.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			appLogger = logging.Setup(logging.Config{
				Level:   level,
				Service: "policytrace",
				Format:  logging.Format(logFormat),
				LogDir:  logDir,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appLogger != nil {
				_ = appLogger.Close()
			}
		},
	}

	appLogger *logging.Logger
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&statutePath, "statutes", "data/statutes.jsonl", "Path to the JSONL statute table")
	pf.StringVar(&contractPath, "contract", "data/contract.yaml", "Path to the contract YAML")
	pf.StringVar(&testsDir, "tests", "tests", "Directory of Python verification tests")
	pf.StringVar(&mappingsPath, "mappings", "data/mappings.yaml", "Path to the mapping tables YAML")
	pf.StringVar(&logFormat, "log-format", "auto", "Log format: auto, text, or json")
	pf.StringVar(&logDir, "log-dir", "", "Directory for JSON log files (disabled when empty)")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging and Gin debug mode")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
