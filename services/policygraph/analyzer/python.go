// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Sentinel errors for test source parsing.
var (
	// ErrInvalidContent is returned when a source file is not valid UTF-8.
	ErrInvalidContent = errors.New("content is not valid UTF-8")

	// ErrSyntax is returned when tree-sitter reports syntax errors. The
	// whole file is skipped: partial extraction from a broken file would
	// produce links that cannot be trusted.
	ErrSyntax = errors.New("source contains syntax errors")
)

// testClass is the raw per-class extraction result before risk and mapping
// tables are applied.
type testClass struct {
	name         string
	docstring    string
	methods      []TestMethod
	sectionHints []string
}

// parseTestClasses parses one Python file and returns its test classes in
// declaration order.
//
// Only recognized shapes produce output: top-level classes matching the
// configured prefix and, inside them, methods matching the method prefix.
// Imports, helper functions, fixtures, and module-level statements are
// skipped without comment.
func parseTestClasses(ctx context.Context, src []byte, cfg Config) ([]testClass, error) {
	if !utf8.Valid(src) {
		return nil, ErrInvalidContent
	}

	// New parser per call, same as the other tree-sitter users in this
	// codebase: parser instances are not safe to share.
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, errors.New("tree-sitter returned nil root node")
	}
	if root.HasError() {
		return nil, ErrSyntax
	}

	var classes []testClass
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		classNode := node
		if node.Type() == "decorated_definition" {
			classNode = node.ChildByFieldName("definition")
			if classNode == nil {
				continue
			}
		}
		if classNode.Type() != "class_definition" {
			continue
		}
		nameNode := classNode.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Content(src)
		if !strings.HasPrefix(name, cfg.ClassPrefix) {
			continue
		}
		classes = append(classes, extractTestClass(classNode, src, name, cfg))
	}
	return classes, nil
}

// extractTestClass pulls the docstring, test methods, and section hints out
// of one class definition.
func extractTestClass(node *sitter.Node, src []byte, name string, cfg Config) testClass {
	cls := testClass{name: name}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	cls.docstring = blockDocstring(body, src)

	fixtures := make(map[string]bool, len(cfg.FixtureParams))
	for _, p := range cfg.FixtureParams {
		fixtures[p] = true
	}
	seenHints := make(map[string]bool)

	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		fn := member
		if member.Type() == "decorated_definition" {
			fn = member.ChildByFieldName("definition")
			if fn == nil {
				continue
			}
		}
		if fn.Type() != "function_definition" {
			continue
		}
		nameNode := fn.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		methodName := nameNode.Content(src)
		if !strings.HasPrefix(methodName, cfg.MethodPrefix) {
			continue
		}

		method := TestMethod{Name: methodName}
		if fnBody := fn.ChildByFieldName("body"); fnBody != nil {
			method.Docstring = blockDocstring(fnBody, src)

			// Only parameters the method actually declares count as
			// fixture roots; a local variable named "policy" in an
			// unrelated helper should not create links.
			params := parameterNames(fn, src)
			roots := make(map[string]bool)
			for _, p := range params {
				if fixtures[p] {
					roots[p] = true
				}
			}
			if len(roots) > 0 {
				collectAttributeHints(fnBody, src, roots, seenHints, &cls.sectionHints)
			}
		}
		cls.methods = append(cls.methods, method)
	}
	return cls
}

// parameterNames returns the declared parameter names of a function.
func parameterNames(fn *sitter.Node, src []byte) []string {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			names = append(names, p.Content(src))
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			for j := 0; j < int(p.NamedChildCount()); j++ {
				if c := p.NamedChild(j); c.Type() == "identifier" {
					names = append(names, c.Content(src))
					break
				}
			}
		}
	}
	return names
}

// collectAttributeHints walks a method body and records the first attribute
// of every access chain rooted at a fixture parameter:
// policy.emergency.er.copay_waived_if_admitted yields "emergency".
//
// Hints are recorded once per class, in first-use order, so the resulting
// link set is deterministic for a given source file.
func collectAttributeHints(node *sitter.Node, src []byte, roots map[string]bool, seen map[string]bool, out *[]string) {
	if node.Type() == "attribute" {
		obj := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if obj != nil && attr != nil && obj.Type() == "identifier" && roots[obj.Content(src)] {
			hint := attr.Content(src)
			if !seen[hint] {
				seen[hint] = true
				*out = append(*out, hint)
			}
			return
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectAttributeHints(node.NamedChild(i), src, roots, seen, out)
	}
}

// blockDocstring returns the docstring of a block node, or "".
func blockDocstring(block *sitter.Node, src []byte) string {
	if block.NamedChildCount() == 0 {
		return ""
	}
	first := block.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	strNode := first.NamedChild(0)
	if strNode.Type() != "string" {
		return ""
	}
	return cleanDocstring(strNode.Content(src))
}

// cleanDocstring strips quotes and normalizes the indentation that Python
// multi-line docstrings carry.
func cleanDocstring(raw string) string {
	raw = strings.TrimPrefix(raw, "r")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			raw = raw[len(q) : len(raw)-len(q)]
			break
		}
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
