package hsm

import (
	"strings"
	"testing"
)

func TestMachineInitializeAndFire(t *testing.T) {
	g := buildTrafficLight(t)
	m := New(g, "light-1")

	if err := m.Initialize(""); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if m.Current() != "green" {
		t.Fatalf("current = %q, want green", m.Current())
	}

	if err := m.Initialize(""); err != ErrAlreadyInitialized {
		t.Fatalf("double initialize: err = %v, want ErrAlreadyInitialized", err)
	}

	if err := m.Fire("timer", nil); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if m.Current() != "yellow" {
		t.Fatalf("current = %q, want yellow", m.Current())
	}
}

func TestMachineSnapshotAndLoad(t *testing.T) {
	g := buildTrafficLight(t)
	m := New(g, "light-1")
	m.Initialize("")
	m.Fire("timer", nil) // green -> yellow
	m.Fire("fault", nil) // yellow -> flashing, recording shallow history

	snap := m.Snapshot()
	if snap.Current != "flashing" {
		t.Fatalf("snapshot current = %q, want flashing", snap.Current)
	}

	restored := New(g, "light-1")
	if err := restored.Load(snap.Current, snap.History); err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.Current() != "flashing" {
		t.Fatalf("restored current = %q, want flashing", restored.Current())
	}

	if err := restored.Fire("resume", nil); err != nil {
		t.Fatalf("fire resume: %v", err)
	}
	if restored.Current() != "yellow" {
		t.Fatalf("restored current after resume = %q, want yellow (history carried over the snapshot)", restored.Current())
	}
}

func TestMachineFireBeforeInitializeFails(t *testing.T) {
	g := buildTrafficLight(t)
	m := New(g, "light-1")
	if err := m.Fire("timer", nil); err != ErrNotInitialized {
		t.Fatalf("fire before initialize: err = %v, want ErrNotInitialized", err)
	}
}

type countingExtension struct {
	completed int
	declined  int
}

func (c *countingExtension) TransitionDeclined(TransitionDeclinedEvent)               { c.declined++ }
func (c *countingExtension) TransitionBegin(TransitionBeginEvent)                     {}
func (c *countingExtension) TransitionCompleted(TransitionCompletedEvent)              { c.completed++ }
func (c *countingExtension) TransitionExceptionThrown(TransitionExceptionThrownEvent)  {}
func (c *countingExtension) StartedStateMachine(StartedStateMachineEvent)             {}
func (c *countingExtension) StoppedStateMachine(StoppedStateMachineEvent)             {}
func (c *countingExtension) EventQueued(EventQueuedEvent)                             {}
func (c *countingExtension) EventQueuedWithPriority(EventQueuedEvent)                  {}
func (c *countingExtension) Loaded(LoadedEvent)                                       {}

// fakeReporter is a minimal Reporter stub; package report (the real
// implementation) imports hsm, so it cannot be imported back here.
type fakeReporter struct{}

func (fakeReporter) ExportDOT(g *Graph, current string) (string, error) {
	return "current=" + current, nil
}

func (fakeReporter) ExportJSON(g *Graph) ([]byte, error) {
	return []byte("{}"), nil
}

func TestMachineReportDelegatesToReporter(t *testing.T) {
	g := buildTrafficLight(t)
	m := New(g, "light-1")
	m.Initialize("")

	out, err := m.Report(fakeReporter{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "current=green") {
		t.Fatalf("report = %q, want it to contain current=green", out)
	}
}

func TestMachineClearExtensionsStopsNotifications(t *testing.T) {
	g := buildTrafficLight(t)
	ext := &countingExtension{}
	m := New(g, "light-1", ext)
	m.Initialize("")

	m.Fire("timer", nil)
	if ext.completed != 1 {
		t.Fatalf("completed = %d, want 1 before ClearExtensions", ext.completed)
	}

	m.ClearExtensions()
	m.Fire("timer", nil)
	if ext.completed != 1 {
		t.Fatalf("completed = %d, want still 1 after ClearExtensions", ext.completed)
	}
}

func TestMachineExtensionsObserveOutcomes(t *testing.T) {
	g := buildTrafficLight(t)
	ext := &countingExtension{}
	m := New(g, "light-1", ext)
	m.Initialize("")

	m.Fire("timer", nil)
	m.Fire("nonsense", nil)

	if ext.completed != 1 {
		t.Fatalf("completed = %d, want 1", ext.completed)
	}
	if ext.declined != 1 {
		t.Fatalf("declined = %d, want 1", ext.declined)
	}
}
