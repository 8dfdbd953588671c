package pager

import (
	"fmt"
	"sync"
)

// BlockPool is a fixed-size bitmap of backing-store blocks, independent of
// and identically shaped to FramePool, kept as a distinct type so a
// BlockID can never be passed where a FrameID is expected.
type BlockPool struct {
	mu   sync.Mutex
	used []bool
	free int
}

// NewBlockPool builds a pool of n blocks, all initially free.
func NewBlockPool(n int) *BlockPool {
	return &BlockPool{used: make([]bool, n), free: n}
}

// Total returns the fixed pool size.
func (p *BlockPool) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.used)
}

// FreeCount returns the number of currently unallocated blocks.
func (p *BlockPool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.free
}

// Reserve returns a free block id, or NoBlock if the pool is exhausted.
func (p *BlockPool) Reserve() BlockID {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, u := range p.used {
		if !u {
			p.used[i] = true
			p.free--
			return BlockID(i)
		}
	}
	return NoBlock
}

// Release returns a block to the pool. A block, once assigned to a page at
// extend time, is owned by that page for its lifetime — Release is only
// ever called from process destruction.
func (p *BlockPool) Release(id BlockID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id < 0 || int(id) >= len(p.used) {
		panic(fmt.Sprintf("pager: block id %d out of range (total %d)", id, len(p.used)))
	}
	if !p.used[id] {
		panic(fmt.Sprintf("pager: double release of block %d", id))
	}
	p.used[id] = false
	p.free++
}
