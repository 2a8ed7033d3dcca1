package alloc

import "sync"

// Arena is a bump-pointer allocator over byte pages. It never frees
// individual allocations; callers release everything at once via Reset.
//
// Per-file arenas use Arena directly and are reset wholesale on Invalidate.
// Per-worker scratch arenas additionally use the Marker/Release pair below
// so a job body's temporaries never leak into the next job.
type Arena struct {
	mu    sync.Mutex
	pages [][]byte
	page  []byte
	used  int
}

const defaultPageSize = 64 * 1024

// NewArena creates an empty arena that grows on demand.
func NewArena() *Arena {
	return &Arena{}
}

// Marker is a high-water mark captured by Mark and consumed by Release.
type Marker struct {
	pageIndex int
	used      int
}

// Alloc returns n zeroed bytes carved from the arena's current page,
// growing the arena with a fresh page when the current one cannot fit n.
func (a *Arena) Alloc(n int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocLocked(n)
}

func (a *Arena) allocLocked(n int) []byte {
	if n <= 0 {
		return nil
	}
	if a.page == nil || a.used+n > len(a.page) {
		size := defaultPageSize
		if n > size {
			size = n
		}
		a.page = make([]byte, size)
		a.pages = append(a.pages, a.page)
		a.used = 0
	}
	b := a.page[a.used : a.used+n : a.used+n]
	a.used += n
	// Bytes below a released marker may hold data from before the rewind.
	clear(b)
	return b
}

// Mark records the arena's current high-water point.
func (a *Arena) Mark() Marker {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Marker{pageIndex: len(a.pages) - 1, used: a.used}
}

// Release rewinds the arena to a previously captured Marker, discarding
// every allocation made since. Pages allocated after the marker are dropped
// from the arena; allocations that no longer fit the marker's page start a
// fresh page.
func (a *Arena) Release(m Marker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if m.pageIndex < 0 {
		a.pages = a.pages[:0]
		a.page = nil
		a.used = 0
		return
	}
	a.pages = a.pages[:m.pageIndex+1]
	a.page = a.pages[m.pageIndex]
	a.used = m.used
}

// Reset clears the arena entirely, releasing all pages back for GC.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages = nil
	a.page = nil
	a.used = 0
}

// BytesInUse reports the number of live bytes across all retained pages.
func (a *Arena) BytesInUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pages) == 0 {
		return 0
	}
	total := 0
	for _, p := range a.pages[:len(a.pages)-1] {
		total += len(p)
	}
	return total + a.used
}

// PoolTier is a fixed-size free-list block pool layered over an Arena,
// grounded on SlabAllocator's tiered-pool shape but specialized to
// fixed-record allocate/free (rather than slice Get/Put) for FileInfo-sized
// records and small expression nodes.
type PoolTier struct {
	arena     *Arena
	blockSize int

	mu   sync.Mutex
	free [][]byte
}

// NewPoolTier creates a pool of fixed-size blocks backed by arena.
func NewPoolTier(arena *Arena, blockSize int) *PoolTier {
	return &PoolTier{arena: arena, blockSize: blockSize}
}

// Allocate returns a zeroed block of exactly blockSize bytes, reusing a
// freed block when one is available.
func (p *PoolTier) Allocate() []byte {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()
		for i := range b {
			b[i] = 0
		}
		return b
	}
	p.mu.Unlock()
	return p.arena.Alloc(p.blockSize)
}

// Free links block into the tier's free list. Blocks must have come from
// this tier's Allocate; stale memory is never handed back without zeroing
// on the next Allocate.
func (p *PoolTier) Free(block []byte) {
	p.mu.Lock()
	p.free = append(p.free, block)
	p.mu.Unlock()
}
