package pager

import "sync"

// procPage is one per-process page: the disk block reserved for it at
// Extend time, whether it has been zero-filled, and (once faulted) the
// arena index of its PTE. The PTE itself carries its own prev/next links,
// so destroy can unlink in O(1) without a separate predecessor cache or a
// ring scan.
type procPage struct {
	diskBlock  BlockID
	zeroFilled bool
	pteIdx     pteIndex // noIndex until first fault
}

// process is the per-pid record.
type process struct {
	pid   PID
	pages []procPage
}

// registry is the global process table, keyed by pid. Lookup order is
// irrelevant, so a map is the natural fit.
type registry struct {
	mu    sync.Mutex
	procs map[PID]*process
}

func newRegistry() *registry {
	return &registry{procs: make(map[PID]*process)}
}

func (r *registry) Lock()   { r.mu.Lock() }
func (r *registry) Unlock() { r.mu.Unlock() }

// create registers pid with zero pages. Re-creating an existing pid is a
// logic error and panics.
func (r *registry) create(pid PID) {
	if _, exists := r.procs[pid]; exists {
		panicDuplicateProcess(pid)
	}
	r.procs[pid] = &process{pid: pid}
}

// lookup returns the process record for pid, panicking if absent — every
// caller in this package already holds the registry lock and is expected
// to have created pid before extending, faulting, or reading it.
func (r *registry) lookup(pid PID) *process {
	p, ok := r.procs[pid]
	if !ok {
		panicNoSuchProcess(pid)
	}
	return p
}

// remove unlinks and returns the process record for teardown.
func (r *registry) remove(pid PID) *process {
	p := r.lookup(pid)
	delete(r.procs, pid)
	return p
}

// count returns the number of currently registered processes.
func (r *registry) count() int {
	return len(r.procs)
}

// page returns a pointer to the n-th page of p, panicking if out of range.
func (p *process) page(n int) *procPage {
	if n < 0 || n >= len(p.pages) {
		panicNoSuchPage(p.pid, n)
	}
	return &p.pages[n]
}
