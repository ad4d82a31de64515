package randomizer

import "sync"

// DefaultRingSize is the number of seeds a SeedRing keeps by default.
const DefaultRingSize = 99

// SeedRing keeps the most recent seeds drawn by a Sampler, newest first.
type SeedRing struct {
	mu    sync.Mutex
	seeds []float64
	size  int
}

// NewSeedRing creates a ring holding up to size seeds. A non-positive size
// selects DefaultRingSize.
func NewSeedRing(size int) *SeedRing {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &SeedRing{seeds: make([]float64, 0, size), size: size}
}

// RecordSeed implements Recorder.
func (r *SeedRing) RecordSeed(seed float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.seeds) < r.size {
		r.seeds = append(r.seeds, 0)
	}
	copy(r.seeds[1:], r.seeds[:len(r.seeds)-1])
	r.seeds[0] = seed
}

// Seeds returns a copy of the recorded seeds, newest first.
func (r *SeedRing) Seeds() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, len(r.seeds))
	copy(out, r.seeds)
	return out
}

// Len returns the number of seeds currently held.
func (r *SeedRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seeds)
}

// Reset forgets all recorded seeds.
func (r *SeedRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeds = r.seeds[:0]
}
