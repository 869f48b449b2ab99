package stream

import (
	"context"
	"errors"
	"testing"
)

func fragmentsOf(parts ...string) Fragments {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func TestCollect_ConcatenatesInOrder(t *testing.T) {
	var seen []string
	text, err := Collect(context.Background(), fragmentsOf("```tsx // a", ".ts\ncontent\n```"), func(f string) {
		seen = append(seen, f)
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != "```tsx // a.ts\ncontent\n```" {
		t.Fatalf("text = %q", text)
	}
	if len(seen) != 2 || seen[0] != "```tsx // a" {
		t.Fatalf("seen = %q", seen)
	}
}

func TestCollect_SkipsEmptyFragments(t *testing.T) {
	calls := 0
	text, err := Collect(context.Background(), fragmentsOf("", "a", "", "b", ""), func(string) { calls++ })
	if err != nil {
		t.Fatal(err)
	}
	if text != "ab" {
		t.Fatalf("text = %q, want %q", text, "ab")
	}
	if calls != 2 {
		t.Fatalf("onFragment called %d times, want 2", calls)
	}
}

func TestCollect_EmptyStream(t *testing.T) {
	text, err := Collect(context.Background(), fragmentsOf(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Fatalf("text = %q", text)
	}
}

func TestCollect_ProducerFailureDiscardsText(t *testing.T) {
	boom := errors.New("connection reset by peer")
	fragments := func(yield func(string, error) bool) {
		if !yield("```ts // a.ts\n", nil) {
			return
		}
		yield("", boom)
	}

	text, err := Collect(context.Background(), fragments, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if text != "" {
		t.Fatalf("partial text leaked: %q", text)
	}
	var ce *CollectError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CollectError, got %T", err)
	}
	if ce.Received != 1 {
		t.Fatalf("Received = %d, want 1", ce.Received)
	}
	if !errors.Is(err, boom) {
		t.Fatal("cause not wrapped")
	}
}

func TestCollect_CancelStopsConsumption(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pulled := 0
	fragments := func(yield func(string, error) bool) {
		for i := 0; i < 100; i++ {
			pulled++
			if i == 2 {
				cancel()
			}
			if !yield("x", nil) {
				return
			}
		}
	}

	text, err := Collect(ctx, fragments, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if text != "" {
		t.Fatalf("partial text leaked: %q", text)
	}
	if pulled != 3 {
		t.Fatalf("pulled %d fragments after cancel, want 3", pulled)
	}
}

func TestCollect_ProducerReportsCancel(t *testing.T) {
	fragments := func(yield func(string, error) bool) {
		yield("", context.Canceled)
	}
	_, err := Collect(context.Background(), fragments, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	var ce *CollectError
	if errors.As(err, &ce) {
		t.Fatal("cancellation should not be reported as a producer failure")
	}
}

func TestCollector_AppendAndReset(t *testing.T) {
	var c Collector
	if c.Append("") {
		t.Fatal("empty fragment appended")
	}
	c.Append("ab")
	c.Append("c")
	if c.Text() != "abc" || c.Fragments() != 2 {
		t.Fatalf("Text=%q Fragments=%d", c.Text(), c.Fragments())
	}
	c.Reset()
	if c.Text() != "" || c.Fragments() != 0 {
		t.Fatal("Reset did not clear collector")
	}
}
