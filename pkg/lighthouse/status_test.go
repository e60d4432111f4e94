package lighthouse

import (
	"testing"
)

func TestStatusTracker_SetAndGet(t *testing.T) {
	tr := newStatusTracker()

	if _, ok := tr.get("AA:01"); ok {
		t.Fatal("expected no status before any set")
	}

	tr.set("AA:01", StatusTransitioning)
	s, ok := tr.get("AA:01")
	if !ok || s != StatusTransitioning {
		t.Fatalf("expected transitioning, got %s (ok=%v)", s, ok)
	}
}

func TestStatusTracker_SnapshotIsACopy(t *testing.T) {
	tr := newStatusTracker()
	tr.set("AA:01", StatusOnline)

	snap := tr.snapshot()
	snap["AA:01"] = StatusStandby

	if s, _ := tr.get("AA:01"); s != StatusOnline {
		t.Fatalf("mutating a snapshot leaked into the tracker: %s", s)
	}
}

func TestStatusTracker_PublishesChanges(t *testing.T) {
	tr := newStatusTracker()
	ch := tr.subscribe()
	defer tr.unsubscribe(ch)

	tr.set("AA:01", StatusTransitioning)
	tr.set("AA:01", StatusOnline)

	ev := <-ch
	if ev.Address != "AA:01" || ev.Status != StatusTransitioning {
		t.Fatalf("unexpected first event: %+v", ev)
	}
	ev = <-ch
	if ev.Status != StatusOnline {
		t.Fatalf("unexpected second event: %+v", ev)
	}
}

func TestStatusTracker_NoEventWhenUnchanged(t *testing.T) {
	tr := newStatusTracker()
	ch := tr.subscribe()
	defer tr.unsubscribe(ch)

	tr.set("AA:01", StatusOnline)
	tr.set("AA:01", StatusOnline)

	<-ch
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event for unchanged status: %+v", ev)
	default:
	}
}

func TestStatusTracker_SlowSubscriberDoesNotBlock(t *testing.T) {
	tr := newStatusTracker()
	ch := tr.subscribe()
	defer tr.unsubscribe(ch)

	// Overfill the subscription buffer; set must never stall.
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			tr.set("AA:01", StatusOnline)
		} else {
			tr.set("AA:01", StatusStandby)
		}
	}
}

func TestStatusTracker_UnsubscribeClosesChannel(t *testing.T) {
	tr := newStatusTracker()
	ch := tr.subscribe()
	tr.unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}

	// A set after unsubscribe must not panic on the closed channel
	tr.set("AA:01", StatusOnline)
}
