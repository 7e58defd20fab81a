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
	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
)

// Validate runs the post-build integrity checks and returns findings.
//
// Validate is a pure function of the frozen graph: it never mutates it,
// and running it twice yields identical lists. Ordering follows node and
// unresolved-attempt insertion order.
//
// Checks:
//   - statute with an empty citation list → error
//   - regulatorily sensitive section with no incoming governs edge → warning
//   - section with no incoming verifies edge → warning
//   - every edge attempt logged as unresolved during build → error
func Validate(g *Graph, sensitiveSections []string) []finding.Finding {
	var findings []finding.Finding

	sensitive := make(map[string]bool, len(sensitiveSections))
	for _, id := range sensitiveSections {
		sensitive[Normalize(id)] = true
	}

	for _, n := range g.Nodes() {
		key := n.Key()
		switch n.Kind {
		case KindStatute:
			if n.Statute != nil && len(n.Statute.Citations) == 0 {
				findings = append(findings, finding.Errorf(finding.KindValidation,
					"statute %s has no citations", n.ID).WithNode(string(n.Kind), n.ID))
			}

		case KindSection:
			var governed, verified bool
			for _, idx := range g.incoming[key] {
				switch g.edges[idx].Kind {
				case EdgeGoverns:
					governed = true
				case EdgeVerifies:
					verified = true
				}
			}
			if sensitive[Normalize(n.ID)] && !governed {
				findings = append(findings, finding.Warningf(finding.KindValidation,
					"section %s is regulatorily sensitive but no statute governs it", n.ID).
					WithNode(string(n.Kind), n.ID))
			}
			if !verified {
				findings = append(findings, finding.Warningf(finding.KindValidation,
					"section %s has no verifying test", n.ID).WithNode(string(n.Kind), n.ID))
			}
		}
	}

	// Escalate every logged unresolved edge attempt to an error on the
	// final report.
	for _, ref := range g.unresolved {
		findings = append(findings, finding.Errorf(finding.KindUnresolvedReference,
			"%s edge from %s to %q was dropped (%s)", ref.Kind, ref.From, ref.TargetRef, ref.Reason).
			WithNode(string(ref.From.Kind), ref.From.ID))
	}

	return findings
}
