package pager

import "encoding/hex"

// Syslog copies length bytes starting at vaddr from pid's virtual memory
// and renders them as lowercase hex, two nibbles per byte, no separator,
// with a trailing newline.
//
// Both the registry and ring locks are held for the whole read so the
// result is a consistent snapshot — no intervening eviction can move a
// frame out from under an in-progress read.
func (p *Pager) Syslog(pid PID, vaddr uintptr, length int) (string, error) {
	p.reg.Lock()
	defer p.reg.Unlock()
	proc := p.reg.lookup(pid)

	if len(proc.pages) == 0 {
		return "", ErrBadRange
	}
	if vaddr < p.cfg.Base {
		return "", ErrBadRange
	}
	limit := p.cfg.Base + uintptr(len(proc.pages))*uintptr(p.cfg.PageSize)
	if vaddr+uintptr(length) > limit {
		return "", ErrBadRange
	}

	p.ring.Lock()
	defer p.ring.Unlock()
	pmem := p.mmu.Pmem()

	raw := make([]byte, length)
	for i := 0; i < length; i++ {
		byteAddr := vaddr + uintptr(i)
		pageNumber := int((byteAddr - p.cfg.Base) / uintptr(p.cfg.PageSize))
		offset := int((byteAddr - p.cfg.Base) % uintptr(p.cfg.PageSize))

		page := proc.page(pageNumber)
		if page.pteIdx == noIndex {
			return "", ErrNotResident
		}
		entry := p.ring.get(page.pteIdx)
		if !entry.inMem {
			return "", ErrNotResident
		}

		raw[i] = pmem[int(entry.frame)*p.cfg.PageSize+offset]
	}
	return hex.EncodeToString(raw) + "\n", nil
}
