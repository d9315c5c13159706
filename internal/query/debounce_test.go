package query

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	var mu sync.Mutex
	var commits []string

	d := NewDebouncer(DebounceDelay, func(v string) {
		mu.Lock()
		commits = append(commits, v)
		mu.Unlock()
	})
	defer d.Stop()

	// Three updates well inside the quiet period must collapse into one
	// commit of the latest value.
	d.Set("a")
	time.Sleep(40 * time.Millisecond)
	d.Set("ab")
	time.Sleep(40 * time.Millisecond)
	d.Set("abc")

	time.Sleep(DebounceDelay + 200*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(commits) != 1 {
		t.Fatalf("expected exactly one commit, got %v", commits)
	}
	if commits[0] != "abc" {
		t.Fatalf("expected latest value committed, got %q", commits[0])
	}
}

func TestDebouncerCommitsAgainAfterQuiet(t *testing.T) {
	var mu sync.Mutex
	var commits []string

	d := NewDebouncer(20*time.Millisecond, func(v string) {
		mu.Lock()
		commits = append(commits, v)
		mu.Unlock()
	})
	defer d.Stop()

	d.Set("first")
	time.Sleep(100 * time.Millisecond)
	d.Set("second")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(commits) != 2 || commits[0] != "first" || commits[1] != "second" {
		t.Fatalf("expected two separate commits, got %v", commits)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	var commits []string

	d := NewDebouncer(20*time.Millisecond, func(v string) {
		mu.Lock()
		commits = append(commits, v)
		mu.Unlock()
	})

	d.Set("dropped")
	d.Stop()
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(commits) != 0 {
		t.Fatalf("expected no commit after Stop, got %v", commits)
	}
}
