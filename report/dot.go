// Package report renders an hsm.Graph as a Graphviz DOT diagram or a
// structural JSON description, and serves either over HTTP.
package report

import (
	"bytes"
	"fmt"

	"github.com/latticehsm/hsm"
)

// DOT is the stdlib-only hsm.Reporter implementation: Graphviz DOT
// output needs no serialization library, only string formatting, so it
// stays on bytes.Buffer and fmt rather than reaching for a graph
// library the rest of this module never otherwise needs.
type DOT struct{}

// ExportDOT renders g as Graphviz DOT, clustering composite states and
// highlighting current (if non-empty) and every one of its ancestors as
// active.
func (DOT) ExportDOT(g *hsm.Graph, current string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph Statechart {\n  rankdir=LR;\n  node [shape=box, fontsize=10, style=rounded];\n  edge [fontsize=9];\n")

	active := make(map[hsm.StateID]bool)
	if current != "" {
		s, ok := g.Lookup(hsm.StateID(current))
		if !ok {
			return "", fmt.Errorf("report: state %q not found in graph", current)
		}
		for _, a := range g.PathToRoot(s) {
			active[a.ID] = true
		}
	}

	renderState(&buf, g.Root, active)

	for _, s := range g.States() {
		for _, t := range s.AllTransitions() {
			if t.Target == nil {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", s.ID, t.Target.ID, t.EventID)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func renderState(buf *bytes.Buffer, s *hsm.State, active map[hsm.StateID]bool) {
	if s.IsComposite() {
		fmt.Fprintf(buf, "  subgraph cluster_%s {\n    label=%q;\n", s.ID, string(s.ID))
		if active[s.ID] {
			buf.WriteString("    style=filled;\n    fillcolor=orange;\n")
		}
		for _, c := range s.Children {
			renderState(buf, c, active)
		}
		buf.WriteString("  }\n")
		return
	}
	style := ""
	if active[s.ID] {
		style = " style=filled fillcolor=lightgreen"
	}
	fmt.Fprintf(buf, "  %q [label=%q%s];\n", s.ID, string(s.ID), style)
}
