package action

import (
	"math/rand"
	"testing"
)

func TestNewWeighted_NormalizesToTotal(t *testing.T) {
	w := NewWeighted(map[string]int{"CELCOIN": 70, "E2E": 30}, DefaultTotal, "")
	sum := 0
	for _, e := range w.Entries {
		sum += e.Weight
	}
	if sum != DefaultTotal {
		t.Fatalf("expected normalized weights to sum to %d, got %d", DefaultTotal, sum)
	}
	if w.Entries[0].Gateway != "CELCOIN" || w.Entries[1].Gateway != "E2E" {
		t.Fatalf("expected entries sorted by gateway name ascending, got %+v", w.Entries)
	}
}

func TestNewWeighted_LargestRemainderTieBreak(t *testing.T) {
	w := NewWeighted(map[string]int{"A": 1, "B": 1, "C": 1}, 100, "")
	sum := 0
	for _, e := range w.Entries {
		sum += e.Weight
	}
	if sum != 100 {
		t.Fatalf("expected 100, got %d", sum)
	}
	// Ties broken by gateway-name ascending: A receives the extra unit.
	if w.Entries[0].Gateway != "A" || w.Entries[0].Weight != 34 {
		t.Fatalf("expected A to receive the rounding remainder, got %+v", w.Entries[0])
	}
}

func TestWeighted_StickyDeterminism(t *testing.T) {
	w := NewWeighted(map[string]int{"CELCOIN": 70, "E2E": 30}, DefaultTotal, "api_user_id")
	value := "42"
	first := w.Resolve(&value, nil)
	for i := 0; i < 100; i++ {
		if got := w.Resolve(&value, nil); got != first {
			t.Fatalf("sticky resolution must be deterministic, got %q then %q", first, got)
		}
	}
}

func TestWeighted_StickyStableAcrossRecompile(t *testing.T) {
	a := NewWeighted(map[string]int{"CELCOIN": 70, "E2E": 30}, DefaultTotal, "api_user_id")
	b := NewWeighted(map[string]int{"CELCOIN": 70, "E2E": 30}, DefaultTotal, "api_user_id")
	value := "some-user"
	if a.Resolve(&value, nil) != b.Resolve(&value, nil) {
		t.Fatal("two compiles of an identical rule must hash the same sticky value to the same gateway")
	}
}

func TestWeighted_UniformDistribution(t *testing.T) {
	w := NewWeighted(map[string]int{"A": 70, "B": 30}, DefaultTotal, "")
	rng := rand.New(rand.NewSource(1))
	counts := map[string]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[w.Resolve(nil, rng)]++
	}
	fracA := float64(counts["A"]) / n
	if fracA < 0.65 || fracA > 0.75 {
		t.Fatalf("expected ~0.70 fraction for A, got %f (counts=%v)", fracA, counts)
	}
}

func TestWeighted_DeterministicGivenSeed(t *testing.T) {
	weights := map[string]int{"A": 50, "B": 50}
	run := func() []string {
		w := NewWeighted(weights, DefaultTotal, "")
		rng := rand.New(rand.NewSource(7))
		out := make([]string, 10)
		for i := range out {
			out[i] = w.Resolve(nil, rng)
		}
		return out
	}
	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed must produce same sequence: index %d %q vs %q", i, first[i], second[i])
		}
	}
}

func TestWeighted_ResolveWithNilRNGDoesNotPanic(t *testing.T) {
	w := NewWeighted(map[string]int{"CELCOIN": 70, "E2E": 30}, DefaultTotal, "")
	for i := 0; i < 50; i++ {
		gw := w.Resolve(nil, nil)
		if gw != "CELCOIN" && gw != "E2E" {
			t.Fatalf("unexpected gateway %q from nil-RNG fallback", gw)
		}
	}
}

func TestWeighted_ResolveFallsBackWhenStickyValueMissing(t *testing.T) {
	w := NewWeighted(map[string]int{"CELCOIN": 70, "E2E": 30}, DefaultTotal, "api_user_id")
	gw := w.Resolve(nil, nil)
	if gw != "CELCOIN" && gw != "E2E" {
		t.Fatalf("unexpected gateway %q when sticky_by is configured but no value was supplied", gw)
	}
}

func TestStableHash_Deterministic(t *testing.T) {
	if StableHash("abc") != StableHash("abc") {
		t.Fatal("StableHash must be deterministic")
	}
	if StableHash("abc") == StableHash("abd") {
		t.Fatal("different inputs should (overwhelmingly likely) hash differently")
	}
}
