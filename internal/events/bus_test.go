package events

import (
	"testing"
	"time"

	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan FrameReportEvent, 1)

	unsub := bus.Subscribe(func(e FrameReportEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(FrameReportEvent{Report: report.Report{Samples: 42, Game: "Contra"}})

	select {
	case got := <-received:
		if got.Report.Samples != 42 || got.Report.Game != "Contra" {
			t.Errorf("unexpected report %+v", got.Report)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()
	received1 := make(chan ScalerChangedEvent, 1)
	received2 := make(chan ScalerChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e ScalerChangedEvent) { received1 <- e })
	defer unsub1()
	unsub2 := bus.Subscribe(func(e ScalerChangedEvent) { received2 <- e })
	defer unsub2()

	bus.Publish(ScalerChangedEvent{Current: ascal.Header{Width: 320, Height: 240}})

	for i, ch := range []chan ScalerChangedEvent{received1, received2} {
		select {
		case got := <-ch:
			if got.Current.Width != 320 {
				t.Errorf("subscriber %d: width = %d", i, got.Current.Width)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan IdleStateChangedEvent, 1)

	unsub := bus.Subscribe(func(e IdleStateChangedEvent) {
		received <- e
	})

	bus.Publish(IdleStateChangedEvent{Idle: true})
	<-received

	unsub()

	bus.Publish(IdleStateChangedEvent{Idle: false})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan FrameReportEvent, 1)
	unsub := SubscribeToChannel(bus, ch)
	defer unsub()

	bus.Publish(FrameReportEvent{Report: report.Report{Samples: 1}})
	bus.Publish(FrameReportEvent{Report: report.Report{Samples: 2}})

	select {
	case got := <-ch:
		if got.Report.Samples != 1 {
			t.Errorf("first event samples = %d, want 1", got.Report.Samples)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}
