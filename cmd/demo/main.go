// Command demo builds a small hierarchical traffic-light-with-fault
// statechart and drives it through an active Runner, logging every
// transition outcome.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/latticehsm/hsm"
	"github.com/latticehsm/hsm/observability"
)

func main() {
	b := hsm.NewBuilder("light")
	b.Root().WithInitial("operational")

	b.Compound("operational").WithInitial("green").WithHistory(hsm.HistoryShallow).
		State("green").Transition("timer", "yellow").Done().
		Up().
		State("yellow").Transition("timer", "red").Done().
		Up().
		State("red").Transition("timer", "green").Done().
		Up().
		Up()

	b.Root().State("flashing").Transition("resume", "operational")
	b.Root().Transition("fault", "flashing")

	graph, err := b.Build()
	if err != nil {
		log.Fatalf("build: %v", err)
	}

	m := hsm.New(graph, "intersection-1", observability.NewLogging(nil))

	runner := hsm.NewRunner(m)
	if err := runner.Start(); err != nil {
		log.Fatalf("start: %v", err)
	}

	for i := 0; i < 3; i++ {
		_ = runner.Fire("timer", nil)
		time.Sleep(10 * time.Millisecond)
	}
	_ = runner.FirePriority("fault", nil)
	time.Sleep(10 * time.Millisecond)
	_ = runner.Fire("resume", nil)
	time.Sleep(10 * time.Millisecond)

	if err := runner.Stop(); err != nil {
		log.Fatalf("stop: %v", err)
	}

	fmt.Printf("final state: %s\n", m.Current())
}
