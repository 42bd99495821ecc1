package action

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// DefaultTotal is the cumulative-distribution total every WEIGHTED
// action's declared weights get normalized to.
const DefaultTotal = 10_000

// defaultRNG backs Resolve when the caller supplies no *rand.Rand — a
// fresh, process-wide source seeded once at package initialization, guarded by a
// mutex since *rand.Rand is not safe for concurrent use on its own.
var (
	defaultRNGMu sync.Mutex
	defaultRNG   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func defaultInt63n(n int64) int64 {
	defaultRNGMu.Lock()
	defer defaultRNGMu.Unlock()
	return defaultRNG.Int63n(n)
}

// WeightEntry is one gateway's normalized share of a Weighted action's
// cumulative distribution, sorted ascending by Gateway.
type WeightEntry struct {
	Gateway    string
	Weight     int // normalized weight, out of Total
	Cumulative int // cumulative sum up to and including this entry
}

// Weighted is a deterministic cumulative-distribution routing table
// with optional sticky hashing.
type Weighted struct {
	Entries  []WeightEntry
	Total    int
	StickyBy string // empty if no stickiness configured
}

// NewWeighted normalizes declared (non-negative, sum > 0) weights to
// total using largest-remainder rounding, ties broken by gateway name
// ascending, and builds the sorted cumulative array. Callers (the rule
// compiler) are expected to have already checked gateways are known and
// weights are non-negative with a positive sum.
func NewWeighted(declared map[string]int, total int, stickyBy string) *Weighted {
	sum := 0
	gateways := make([]string, 0, len(declared))
	for gw, w := range declared {
		if w <= 0 {
			continue
		}
		sum += w
		gateways = append(gateways, gw)
	}
	sort.Strings(gateways)

	type share struct {
		gateway   string
		quotient  int
		remainder int // out of sum; larger remainder gets the rounding unit first
	}
	shares := make([]share, len(gateways))
	floorSum := 0
	for i, gw := range gateways {
		w := declared[gw]
		scaled := w * total
		q := scaled / sum
		r := scaled % sum
		shares[i] = share{gateway: gw, quotient: q, remainder: r}
		floorSum += q
	}

	remaining := total - floorSum
	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := shares[order[a]], shares[order[b]]
		if sa.remainder != sb.remainder {
			return sa.remainder > sb.remainder
		}
		return sa.gateway < sb.gateway
	})
	for i := 0; i < remaining && i < len(order); i++ {
		shares[order[i]].quotient++
	}

	entries := make([]WeightEntry, 0, len(gateways))
	cumulative := 0
	for _, gw := range gateways {
		for _, s := range shares {
			if s.gateway != gw || s.quotient == 0 {
				continue
			}
			cumulative += s.quotient
			entries = append(entries, WeightEntry{Gateway: gw, Weight: s.quotient, Cumulative: cumulative})
			break
		}
	}

	return &Weighted{Entries: entries, Total: cumulative, StickyBy: stickyBy}
}

// Resolve picks a gateway for this Weighted action.
//
// If stickyValue is non-nil (the configured sticky_by field was present
// in the request context), resolution is a deterministic function of
// StableHash(*stickyValue) — identical inputs always resolve to the
// identical gateway, independent of rng.
//
// Otherwise a uniform draw in [0, Total) selects the gateway, using rng
// if supplied or a package-level default source if rng is nil. This is
// also the fallback when sticky_by is configured but the value is
// missing from ctx — ruleset content never causes a panic here.
func (w *Weighted) Resolve(stickyValue *string, rng *rand.Rand) string {
	if len(w.Entries) == 0 {
		return ""
	}
	var h uint64
	switch {
	case stickyValue != nil:
		h = StableHash(*stickyValue) % uint64(w.Total)
	case rng != nil:
		h = uint64(rng.Int63n(int64(w.Total)))
	default:
		h = uint64(defaultInt63n(int64(w.Total)))
	}
	return w.lookup(h)
}

// lookup binary-searches the cumulative array for the smallest entry
// whose cumulative weight is strictly greater than h.
func (w *Weighted) lookup(h uint64) string {
	idx := sort.Search(len(w.Entries), func(i int) bool {
		return uint64(w.Entries[i].Cumulative) > h
	})
	if idx >= len(w.Entries) {
		idx = len(w.Entries) - 1
	}
	return w.Entries[idx].Gateway
}

func (w *Weighted) ToJSON() map[string]any {
	weights := make(map[string]any, len(w.Entries))
	for _, e := range w.Entries {
		weights[e.Gateway] = e.Weight
	}
	out := map[string]any{"route": "WEIGHTED", "weights": weights}
	if w.StickyBy != "" {
		out["sticky_by"] = w.StickyBy
	}
	return out
}
