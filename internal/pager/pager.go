package pager

// Lock order, enforced by convention throughout this package:
//
//	registry -> ring -> frames -> blocks
//
// A method may hold a prefix of this chain; it must never acquire an
// earlier lock while holding a later one. All MMU calls that touch a
// page's mapping are issued with the ring lock still held, so a
// concurrent fault can never race an in-progress eviction.

// Config fixes the address-space layout and pool sizes for one Pager.
// BASE and PAGE_SIZE are constants for the Pager's lifetime once set.
type Config struct {
	NFrames  int
	NBlocks  int
	Base     uintptr
	PageSize int
}

// DefaultPageSize is used when a Config leaves PageSize unset.
const DefaultPageSize = 4096

// Pager is the demand-paging core: frame/block pools, the page-table ring,
// and the process registry, wired to an MMU collaborator. Construct exactly
// once per address space via New.
type Pager struct {
	cfg    Config
	mmu    MMU
	frames *FramePool
	blocks *BlockPool
	ring   *ring
	reg    *registry
}

// New establishes the frame/block pools and an empty process registry. mmu
// is the external collaborator every subsequent operation drives.
func New(cfg Config, mmu MMU) *Pager {
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Pager{
		cfg:    cfg,
		mmu:    mmu,
		frames: NewFramePool(cfg.NFrames),
		blocks: NewBlockPool(cfg.NBlocks),
		ring:   newRing(),
		reg:    newRegistry(),
	}
}

// Create registers a new process with zero pages. Re-creating an existing
// pid is a logic error and panics.
func (p *Pager) Create(pid PID) {
	p.reg.Lock()
	defer p.reg.Unlock()
	p.reg.create(pid)
}

// Extend reserves one more page for pid and returns its virtual address.
// Returns ErrPoolExhausted if the block pool is empty.
func (p *Pager) Extend(pid PID) (uintptr, error) {
	block := p.blocks.Reserve()
	if block == NoBlock {
		return 0, ErrPoolExhausted
	}

	p.reg.Lock()
	defer p.reg.Unlock()
	proc := p.reg.lookup(pid)
	pageNumber := len(proc.pages)
	proc.pages = append(proc.pages, procPage{
		diskBlock: block,
		pteIdx:    noIndex,
	})
	return p.vaddr(pageNumber), nil
}

// ExtendPtr mirrors Extend's exhaustion contract for callers that want an
// ok-bool result instead of an error. The root vmpager.Pager reports
// exhaustion differently: its Extend returns 0.
func (p *Pager) ExtendPtr(pid PID) (vaddr uintptr, ok bool) {
	v, err := p.Extend(pid)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (p *Pager) vaddr(pageNumber int) uintptr {
	return p.cfg.Base + uintptr(pageNumber)*uintptr(p.cfg.PageSize)
}

func (p *Pager) pageNumber(vaddr uintptr) int {
	return int((vaddr - p.cfg.Base) / uintptr(p.cfg.PageSize))
}

// Stats is a point-in-time snapshot used by the sweeper and the RPC Stats call.
type Stats struct {
	FreeFrames   int
	TotalFrames  int
	FreeBlocks   int
	TotalBlocks  int
	ProcessCount int
}

// Stats reports current pool utilization.
func (p *Pager) Stats() Stats {
	p.reg.Lock()
	n := p.reg.count()
	p.reg.Unlock()
	return Stats{
		FreeFrames:   p.frames.FreeCount(),
		TotalFrames:  p.frames.Total(),
		FreeBlocks:   p.blocks.FreeCount(),
		TotalBlocks:  p.blocks.Total(),
		ProcessCount: n,
	}
}
