package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/TimurManjosov/gwselect/internal/ruleset"
)

func fakeSnapshot(id int64) *ruleset.Snapshot {
	return &ruleset.Snapshot{ID: id, Version: id, CompiledAt: time.Unix(int64(id), 0)}
}

func TestRegistry_CurrentBeforeInstall(t *testing.T) {
	r := NewRegistry()
	if r.Current() != nil {
		t.Fatal("expected nil snapshot before any install")
	}
	if _, _, _, ok := r.ActiveID(); ok {
		t.Fatal("expected ActiveID ok=false before any install")
	}
}

func TestRegistry_InstallReturnsPrior(t *testing.T) {
	r := NewRegistry()
	a := fakeSnapshot(1)
	b := fakeSnapshot(2)

	if prior := r.Install(a); prior != nil {
		t.Fatalf("expected nil prior on first install, got %+v", prior)
	}
	if prior := r.Install(b); prior != a {
		t.Fatalf("expected prior to be the first snapshot")
	}
	if r.Current() != b {
		t.Fatal("expected current snapshot to be the latest install")
	}
}

// TestRegistry_ConcurrentReadersDuringSwap exercises the hot-reload
// contract: many concurrent readers taking a snapshot reference must
// never observe anything but one of the two fully-formed snapshots.
func TestRegistry_ConcurrentReadersDuringSwap(t *testing.T) {
	r := NewRegistry()
	a := fakeSnapshot(1)
	b := fakeSnapshot(2)
	r.Install(a)

	const readers = 1000
	var wg sync.WaitGroup
	results := make([]*ruleset.Snapshot, readers)
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = r.Current()
		}(i)
	}
	r.Install(b)
	wg.Wait()

	for i, snap := range results {
		if snap != a && snap != b {
			t.Fatalf("reader %d observed a snapshot that was never installed: %+v", i, snap)
		}
	}
}
