package rc

import (
	"sync/atomic"
	"unsafe"

	logger "github.com/moontrade/log"
	"github.com/moontrade/rc/pkg/spinlock"
)

// Leak tracking records every live block's type, size and shape so tests and
// long-running processes can find blocks that never reached zero. Off by
// default; the hot path pays a single atomic load when disabled.

type allocSite struct {
	typ   string
	size  uintptr
	elems int
}

var tracker struct {
	enabled int32
	mu      spinlock.Mutex
	live    map[unsafe.Pointer]allocSite
}

// SetLeakTracking enables or disables live-block tracking. Enabling starts
// from an empty ledger: blocks allocated while tracking was off are not
// retroactively recorded.
func SetLeakTracking(enabled bool) {
	tracker.mu.Lock()
	if enabled {
		tracker.live = make(map[unsafe.Pointer]allocSite)
		atomic.StoreInt32(&tracker.enabled, 1)
	} else {
		atomic.StoreInt32(&tracker.enabled, 0)
		tracker.live = nil
	}
	tracker.mu.Unlock()
}

func leakTracking() bool {
	return atomic.LoadInt32(&tracker.enabled) != 0
}

func trackAlloc(p unsafe.Pointer, typ string, size uintptr, elems int) {
	tracker.mu.Lock()
	if tracker.live != nil {
		tracker.live[p] = allocSite{typ: typ, size: size, elems: elems}
	}
	tracker.mu.Unlock()
}

func trackFree(p unsafe.Pointer) {
	if !leakTracking() {
		return
	}
	tracker.mu.Lock()
	if tracker.live != nil {
		delete(tracker.live, p)
	}
	tracker.mu.Unlock()
}

// LiveTracked returns the number of blocks currently recorded by the
// tracker. Zero when tracking is disabled.
func LiveTracked() int {
	tracker.mu.Lock()
	n := len(tracker.live)
	tracker.mu.Unlock()
	return n
}

// DumpLeaks logs every tracked live block and returns how many there were.
// A clean shutdown reports zero.
func DumpLeaks() int {
	tracker.mu.Lock()
	sites := make([]allocSite, 0, len(tracker.live))
	for _, site := range tracker.live {
		sites = append(sites, site)
	}
	tracker.mu.Unlock()
	for _, site := range sites {
		logger.Warn("rc: leaked %s block: %d bytes, %d element(s)", site.typ, site.size, site.elems)
	}
	return len(sites)
}
