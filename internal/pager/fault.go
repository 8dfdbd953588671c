package pager

// Fault resolves a page fault by dispatching on the per-process page's
// (zeroFilled, inMem) state into one of three disjoint cases. It never
// returns an error — a bad pid or vaddr is a caller bug, not a recoverable
// condition, and panics.
//
// Lock order: registry, then ring, then (via reserve/evict) frames — never
// acquired out of order, and every MMU call below happens with the ring
// lock still held.
func (p *Pager) Fault(pid PID, vaddr uintptr) {
	n := p.pageNumber(vaddr)

	p.reg.Lock()
	defer p.reg.Unlock()
	proc := p.reg.lookup(pid)
	page := proc.page(n)

	p.ring.Lock()
	defer p.ring.Unlock()

	switch {
	case !page.zeroFilled:
		p.faultFirstTouch(pid, vaddr, n, page)
	default:
		entry := p.ring.get(page.pteIdx)
		if entry.inMem {
			p.faultWriteUpgrade(pid, vaddr, entry)
		} else {
			p.faultSwapIn(pid, vaddr, entry)
		}
	}
}

// faultFirstTouch is case A: the page has never been faulted before.
// Caller holds registry and ring locks.
func (p *Pager) faultFirstTouch(pid PID, vaddr uintptr, pageNumber int, page *procPage) {
	frame := p.frames.Reserve()
	if frame == NoFrame {
		frame = p.evictLocked()
	}

	e := pte{
		pageNumber: pageNumber,
		pid:        pid,
		diskBlock:  page.diskBlock,
		frame:      frame,
		prot:       ProtRead,
		inMem:      true,
	}
	idx := p.ring.append(e)
	page.pteIdx = idx

	p.mmu.ZeroFill(frame)
	p.mmu.Resident(pid, vaddr, frame, ProtRead)
	page.zeroFilled = true
}

// faultWriteUpgrade is case B: the page is resident and either has never
// been written (prot == READ) or was just demoted by the clock sweep
// (prot == NONE, "second chance kept it in memory"). Caller holds
// registry and ring locks.
func (p *Pager) faultWriteUpgrade(pid PID, vaddr uintptr, e *pte) {
	if e.prot == ProtRead|ProtWrite {
		return // already writable; nothing to do
	}
	e.prot = ProtRead | ProtWrite
	e.dirty = true
	p.mmu.Chprot(pid, vaddr, ProtRead|ProtWrite)
}

// faultSwapIn is case C: the page was faulted before but is not currently
// resident (it was evicted). Caller holds registry and ring locks.
func (p *Pager) faultSwapIn(pid PID, vaddr uintptr, e *pte) {
	frame := p.frames.Reserve()
	if frame == NoFrame {
		frame = p.evictLocked()
	}

	if e.dirty {
		p.mmu.DiskRead(e.diskBlock, frame)
	} else {
		p.mmu.ZeroFill(frame)
	}

	e.frame = frame
	e.inMem = true
	e.prot = ProtRead
	p.mmu.Resident(pid, vaddr, frame, ProtRead)
}

// evictLocked runs the clock sweep and evicts its chosen victim, returning
// the now-free frame directly to the caller (it is never returned to the
// FramePool). Precondition: the frame pool is empty, and the caller
// already holds the ring lock.
func (p *Pager) evictLocked() FrameID {
	victimIdx := p.ring.victim(p.mmu, p.cfg.Base, p.cfg.PageSize)
	victim := p.ring.get(victimIdx)

	if victim.dirty {
		p.mmu.DiskWrite(victim.frame, victim.diskBlock)
	}
	p.mmu.NonResident(victim.pid, victim.vaddr(p.cfg.Base, p.cfg.PageSize))

	frame := victim.frame
	victim.inMem = false
	return frame
}
