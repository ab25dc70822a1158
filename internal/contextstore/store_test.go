package contextstore

import (
	"fmt"
	"sync"
	"testing"
)

func TestPutGetTake(t *testing.T) {
	s := New()

	if _, ok := s.Get("user"); ok {
		t.Fatalf("Get() on empty store returned an entry")
	}

	s.Put("user", InteractionContext{OriginalMessage: "hola", AnalysisSummary: "Mensaje Seguro"})

	got, ok := s.Get("user")
	if !ok {
		t.Fatalf("Get() missing entry after Put")
	}
	if got.AnalysisSummary != "Mensaje Seguro" {
		t.Fatalf("Get() summary = %q", got.AnalysisSummary)
	}

	// Get is non-destructive.
	if _, ok := s.Get("user"); !ok {
		t.Fatalf("Get() consumed the entry")
	}

	taken, ok := s.Take("user")
	if !ok {
		t.Fatalf("Take() missing entry")
	}
	if taken.OriginalMessage != "hola" {
		t.Fatalf("Take() original = %q", taken.OriginalMessage)
	}
	if _, ok := s.Take("user"); ok {
		t.Fatalf("second Take() returned an entry")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := New()
	s.Put("user", InteractionContext{AnalysisSummary: "Estafa Detectada"})
	s.Put("user", InteractionContext{AnalysisSummary: "Mensaje Seguro"})

	got, ok := s.Take("user")
	if !ok {
		t.Fatalf("Take() missing entry")
	}
	if got.AnalysisSummary != "Mensaje Seguro" {
		t.Fatalf("last Put should win, got %q", got.AnalysisSummary)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after Take", s.Len())
	}
}

func TestTakeConsumesAtMostOnceUnderConcurrency(t *testing.T) {
	s := New()
	const senders = 50

	for i := 0; i < senders; i++ {
		s.Put(fmt.Sprintf("user-%d", i), InteractionContext{AnalysisSummary: "Mensaje Seguro"})
	}

	var wg sync.WaitGroup
	hits := make(chan string, senders*4)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < senders; i++ {
				if _, ok := s.Take(fmt.Sprintf("user-%d", i)); ok {
					hits <- fmt.Sprintf("user-%d", i)
				}
			}
		}()
	}
	wg.Wait()
	close(hits)

	seen := make(map[string]int)
	for id := range hits {
		seen[id]++
	}
	if len(seen) != senders {
		t.Fatalf("expected %d senders consumed, got %d", senders, len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("context for %s consumed %d times", id, n)
		}
	}
}
