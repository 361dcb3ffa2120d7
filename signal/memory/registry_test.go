package memory

import (
	"context"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Register-before-signal
// ---------------------------------------------------------------------------

func TestSignal_DroppedWhenUnregistered(t *testing.T) {
	r := New()
	ctx := context.Background()

	if err := r.Signal(ctx, "orphan", "lost"); err != nil {
		t.Fatalf("signal: %v", err)
	}
	if err := r.Register(ctx, "orphan"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, timedOut, err := r.WaitOne(ctx, "orphan", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("waitone: %v", err)
	}
	if !timedOut {
		t.Fatal("signal sent before registration must be lost")
	}
}

func TestSignal_DeliveredWhenRegistered(t *testing.T) {
	r := New()
	ctx := context.Background()

	if err := r.Register(ctx, "ch"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Signal(ctx, "ch", "hello"); err != nil {
		t.Fatalf("signal: %v", err)
	}

	p, timedOut, err := r.WaitOne(ctx, "ch", time.Second)
	if err != nil || timedOut {
		t.Fatalf("waitone: timedOut=%v err=%v", timedOut, err)
	}
	if p != "hello" {
		t.Fatalf("payload = %q, want hello", p)
	}
}

// ---------------------------------------------------------------------------
// Newest-unconsumed-wins
// ---------------------------------------------------------------------------

func TestSignal_NewestWins(t *testing.T) {
	r := New()
	ctx := context.Background()

	_ = r.Register(ctx, "ch")
	_ = r.Signal(ctx, "ch", "old")
	_ = r.Signal(ctx, "ch", "new")

	p, timedOut, _ := r.WaitOne(ctx, "ch", time.Second)
	if timedOut || p != "new" {
		t.Fatalf("payload = %q timedOut=%v, want newest signal", p, timedOut)
	}

	// The older signal was overwritten, not queued.
	_, timedOut, _ = r.WaitOne(ctx, "ch", 20*time.Millisecond)
	if !timedOut {
		t.Fatal("expected no second signal")
	}
}

// ---------------------------------------------------------------------------
// Blocking delivery
// ---------------------------------------------------------------------------

func TestWaitOne_WakesBlockedWaiter(t *testing.T) {
	r := New()
	ctx := context.Background()
	_ = r.Register(ctx, "ch")

	done := make(chan string, 1)
	go func() {
		p, _, _ := r.WaitOne(ctx, "ch", 5*time.Second)
		done <- p
	}()

	time.Sleep(20 * time.Millisecond)
	_ = r.Signal(ctx, "ch", "late")

	select {
	case p := <-done:
		if p != "late" {
			t.Fatalf("payload = %q, want late", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never woke up")
	}
}

func TestWaitOne_ZeroTimeout(t *testing.T) {
	r := New()
	ctx := context.Background()
	_ = r.Register(ctx, "ch")

	_, timedOut, err := r.WaitOne(ctx, "ch", 0)
	if err != nil {
		t.Fatalf("waitone: %v", err)
	}
	if !timedOut {
		t.Fatal("zero timeout with no signal must time out")
	}
}

func TestWaitOne_ContextCancelledReportsTimeout(t *testing.T) {
	r := New()
	_ = r.Register(context.Background(), "ch")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, timedOut, err := r.WaitOne(ctx, "ch", 5*time.Second)
	if err != nil {
		t.Fatalf("waitone: %v", err)
	}
	if !timedOut {
		t.Fatal("cancellation must surface as a timed-out wait")
	}
}

// ---------------------------------------------------------------------------
// Registration lifecycle
// ---------------------------------------------------------------------------

func TestLateSignal_SurvivesTimedOutWait(t *testing.T) {
	r := New()
	ctx := context.Background()
	_ = r.Register(ctx, "ch")

	// First wait times out; the channel stays registered.
	_, timedOut, _ := r.WaitOne(ctx, "ch", 10*time.Millisecond)
	if !timedOut {
		t.Fatal("expected first wait to time out")
	}

	// A late signal is still consumable by a retry.
	_ = r.Signal(ctx, "ch", "finally")
	p, timedOut, _ := r.WaitOne(ctx, "ch", time.Second)
	if timedOut || p != "finally" {
		t.Fatalf("retry wait: payload=%q timedOut=%v", p, timedOut)
	}
}

func TestUnregister_DropsPending(t *testing.T) {
	r := New()
	ctx := context.Background()

	_ = r.Register(ctx, "ch")
	_ = r.Signal(ctx, "ch", "doomed")
	_ = r.Unregister(ctx, "ch")
	_ = r.Register(ctx, "ch")

	_, timedOut, _ := r.WaitOne(ctx, "ch", 20*time.Millisecond)
	if !timedOut {
		t.Fatal("unregister must drop the unconsumed signal")
	}
}

func TestRegistry_ReleasesRecords(t *testing.T) {
	r := New()
	ctx := context.Background()

	// A full register/signal/wait/unregister cycle leaves nothing behind.
	_ = r.Register(ctx, "ch")
	_ = r.Signal(ctx, "ch", "payload")
	if _, timedOut, _ := r.WaitOne(ctx, "ch", time.Second); timedOut {
		t.Fatal("signal not delivered")
	}
	_ = r.Unregister(ctx, "ch")

	// Signals and waits against names nobody registered must not
	// accumulate records either.
	for i := range 100 {
		name := "ghost" + string(rune('a'+i%26))
		_ = r.Signal(ctx, name, "lost")
		_, _, _ = r.WaitOne(ctx, name, 0)
	}

	r.mu.Lock()
	n := len(r.channels)
	r.mu.Unlock()
	if n != 0 {
		t.Fatalf("registry retains %d records after full lifecycle", n)
	}
}
