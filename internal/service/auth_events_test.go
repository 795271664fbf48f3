package service

import (
	"sync"
	"testing"
	"time"
)

func TestAuthEventsOrderAndUnsubscribe(t *testing.T) {
	events := NewAuthEvents()

	var got []string
	unsubA := events.Subscribe(func(evt AuthEvent) { got = append(got, "a:"+string(evt.Type)) })
	events.Subscribe(func(evt AuthEvent) { got = append(got, "b:"+string(evt.Type)) })

	events.Emit(AuthEvent{Type: EventSignedIn})
	unsubA()
	unsubA()
	events.Emit(AuthEvent{Type: EventSignedOut})

	want := []string{"a:SIGNED_IN", "b:SIGNED_IN", "b:SIGNED_OUT"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if events.Len() != 1 {
		t.Fatalf("expected 1 listener left, got %d", events.Len())
	}
}

func TestAuthEventsConcurrentSubscribe(t *testing.T) {
	events := NewAuthEvents()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := events.Subscribe(func(AuthEvent) {})
			events.Emit(AuthEvent{Type: EventTokenRefreshed})
			unsub()
		}()
	}
	wg.Wait()

	if events.Len() != 0 {
		t.Fatalf("expected no listeners, got %d", events.Len())
	}
}

func TestAuthEventsListenerMayReenter(t *testing.T) {
	events := NewAuthEvents()

	var got []AuthEventType
	var unsub func()
	unsub = events.Subscribe(func(evt AuthEvent) {
		got = append(got, evt.Type)
		if evt.Type == EventSignedIn {
			events.Emit(AuthEvent{Type: EventSignedOut})
			unsub()
		}
	})

	done := make(chan struct{})
	go func() {
		events.Emit(AuthEvent{Type: EventSignedIn})
		events.Emit(AuthEvent{Type: EventTokenRefreshed})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("nested emit deadlocked")
	}

	if len(got) != 2 || got[0] != EventSignedIn || got[1] != EventSignedOut {
		t.Fatalf("unexpected events %v", got)
	}
	if events.Len() != 0 {
		t.Fatalf("expected listener to be removed, got %d", events.Len())
	}
}
