package eventbus

import (
	"testing"
	"time"
)

func TestPublishDeliversToMatchingFilter(t *testing.T) {
	b := New()
	sub := b.Subscribe([]Kind{KindIncomingSms}, LagDrop, 4)
	defer sub.Close()

	b.Publish(KindGnssFix, "ignored")
	b.Publish(KindIncomingSms, "hello")

	select {
	case ev := <-sub.C():
		if ev.Kind != KindIncomingSms || ev.Payload != "hello" {
			t.Fatalf("got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case ev := <-sub.C():
		t.Fatalf("unexpected second event %+v", ev)
	default:
	}
}

func TestEmptyFilterReceivesEverything(t *testing.T) {
	b := New()
	sub := b.Subscribe(nil, LagDrop, 4)
	defer sub.Close()

	b.Publish(KindGnssFix, nil)
	b.Publish(KindIncomingSms, nil)

	for i := 0; i < 2; i++ {
		select {
		case <-sub.C():
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestLagDropEvictsOldest(t *testing.T) {
	b := New()
	sub := b.Subscribe(nil, LagDrop, 2)
	defer sub.Close()

	b.Publish(KindGnssFix, 1)
	b.Publish(KindGnssFix, 2)
	b.Publish(KindGnssFix, 3)

	first := <-sub.C()
	second := <-sub.C()
	if first.Payload != 2 || second.Payload != 3 {
		t.Fatalf("got payloads %v, %v; want 2, 3 (oldest dropped)", first.Payload, second.Payload)
	}
	if sub.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", sub.Dropped())
	}
}

func TestLagDisconnectClosesSubscription(t *testing.T) {
	b := New()
	sub := b.Subscribe(nil, LagDisconnect, 1)

	b.Publish(KindGnssFix, 1)
	b.Publish(KindGnssFix, 2) // queue full, should disconnect

	if _, ok := <-sub.C(); !ok {
		return
	}
	if _, ok := <-sub.C(); ok {
		t.Fatal("expected subscription channel to be closed after overflow")
	}
}

func TestEventIDsAreMonotonic(t *testing.T) {
	b := New()
	sub := b.Subscribe(nil, LagDrop, 4)
	defer sub.Close()

	e1 := b.Publish(KindGnssFix, nil)
	e2 := b.Publish(KindGnssFix, nil)
	if e2.ID <= e1.ID {
		t.Fatalf("event IDs not increasing: %d then %d", e1.ID, e2.ID)
	}
}

func TestSubscriberCount(t *testing.T) {
	b := New()
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers initially")
	}
	sub := b.Subscribe(nil, LagDrop, 4)
	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber")
	}
	sub.Close()
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after close")
	}
}
