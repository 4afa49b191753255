package eventsource

import (
	"context"
	"testing"
	"time"

	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

func runTestNATSServer(t *testing.T) *natssrv.Server {
	t.Helper()

	opts := &natssrv.Options{Port: -1}
	s, err := natssrv.NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go s.Start()
	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(s.Shutdown)
	return s
}

func TestNATSSourcePumpsDecodedMessages(t *testing.T) {
	s := runTestNATSServer(t)

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	src, err := NewNATS(nc, "hsm.events")
	if err != nil {
		t.Fatalf("NewNATS: %v", err)
	}
	defer src.Close()

	sink := &fakeSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Pump(ctx, sink) }()

	if err := nc.Publish("hsm.events", []byte(`{"id":"timer"}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := nc.Publish("hsm.events", []byte(`{"id":"fault"}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.fired) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if len(sink.fired) != 2 || sink.fired[0] != "timer" || sink.fired[1] != "fault" {
		t.Fatalf("fired = %v, want [timer fault]", sink.fired)
	}
}
