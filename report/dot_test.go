package report

import (
	"strings"
	"testing"

	"github.com/latticehsm/hsm"
)

func buildSampleGraph(t *testing.T) *hsm.Graph {
	t.Helper()
	b := hsm.NewBuilder("light")
	b.Root().WithInitial("operational")
	op := b.Compound("operational").WithInitial("green")
	op.State("green").Transition("timer", "yellow")
	op.State("yellow")
	op.Up()
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return g
}

func TestExportDOTHighlightsActivePath(t *testing.T) {
	g := buildSampleGraph(t)
	dot, err := DOT{}.ExportDOT(g, "green")
	if err != nil {
		t.Fatalf("ExportDOT: %v", err)
	}
	if !strings.Contains(dot, "cluster_operational") {
		t.Fatal("expected a cluster for the composite operational state")
	}
	if !strings.Contains(dot, `"green" -> "yellow"`) {
		t.Fatal("expected an edge from green to yellow")
	}
	if !strings.Contains(dot, "fillcolor=orange") {
		t.Fatal("expected the active composite ancestor to be highlighted")
	}
}

func TestExportDOTUnknownCurrentErrors(t *testing.T) {
	g := buildSampleGraph(t)
	if _, err := (DOT{}).ExportDOT(g, "nonexistent"); err == nil {
		t.Fatal("expected an error for an unknown current state")
	}
}

func TestExportJSONDescribesStructure(t *testing.T) {
	g := buildSampleGraph(t)
	data, err := DOT{}.ExportJSON(g)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if !strings.Contains(string(data), `"id": "green"`) {
		t.Fatalf("expected exported JSON to mention state green, got %s", data)
	}
}
