package pager

// Destroy releases every resource pid owns and removes its process record.
// A non-existent pid panics, same as every other operation that takes a
// pid.
func (p *Pager) Destroy(pid PID) {
	p.reg.Lock()
	defer p.reg.Unlock()
	proc := p.reg.remove(pid)

	p.ring.Lock()
	defer p.ring.Unlock()

	for i := range proc.pages {
		page := &proc.pages[i]
		if page.pteIdx != noIndex {
			entry := p.ring.get(page.pteIdx)
			if entry.inMem {
				p.frames.Release(entry.frame)
			}
			p.ring.unlink(page.pteIdx)
		}
		p.blocks.Release(page.diskBlock)
	}
}
