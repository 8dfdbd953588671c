// Package mmu provides an in-memory simulator of the external MMU/harness
// that drives vmpager/internal/pager. It is the concrete type wired into
// pager.New by the cmd/pagerd daemon (which serves the control-plane RPC
// facade) and by the seed-scenario test; the pager package's own unit
// tests use a smaller fake instead.
package mmu

import (
	"fmt"
	"sync"

	"vmpager/internal/pager"
)

// Op names a single MMU side-effect call, for scenario assertions.
type Op string

const (
	OpZeroFill    Op = "zero_fill"
	OpResident    Op = "resident"
	OpNonResident Op = "nonresident"
	OpChprot      Op = "chprot"
	OpDiskRead    Op = "disk_read"
	OpDiskWrite   Op = "disk_write"
)

// Call records one MMU invocation in the order it happened, so a test can
// assert an exact call sequence for a seed scenario.
type Call struct {
	Op    Op
	Pid   pager.PID
	Vaddr uintptr
	Frame pager.FrameID
	Block pager.BlockID
	Prot  pager.Prot
}

func (c Call) String() string {
	switch c.Op {
	case OpZeroFill:
		return fmt.Sprintf("zero_fill(frame=%d)", c.Frame)
	case OpResident:
		return fmt.Sprintf("resident(pid=%d, vaddr=%#x, frame=%d, prot=%s)", c.Pid, c.Vaddr, c.Frame, c.Prot)
	case OpNonResident:
		return fmt.Sprintf("nonresident(pid=%d, vaddr=%#x)", c.Pid, c.Vaddr)
	case OpChprot:
		return fmt.Sprintf("chprot(pid=%d, vaddr=%#x, prot=%s)", c.Pid, c.Vaddr, c.Prot)
	case OpDiskRead:
		return fmt.Sprintf("disk_read(block=%d, frame=%d)", c.Block, c.Frame)
	case OpDiskWrite:
		return fmt.Sprintf("disk_write(frame=%d, block=%d)", c.Frame, c.Block)
	default:
		return string(c.Op)
	}
}

// SimMMU is a byte-array-backed stand-in for a real MMU: pmem holds frame
// contents, disk holds block contents, and every call is appended to a log
// a test can inspect afterward. It satisfies pager.MMU structurally —
// nothing in the pager package imports this package.
type SimMMU struct {
	mu       sync.Mutex
	pmem     []byte
	disk     []byte
	pageSize int
	calls    []Call
}

// New builds a simulator sized for nframes physical frames and nblocks
// backing-store blocks, each pageSize bytes.
func New(nframes, nblocks, pageSize int) *SimMMU {
	return &SimMMU{
		pmem:     make([]byte, nframes*pageSize),
		disk:     make([]byte, nblocks*pageSize),
		pageSize: pageSize,
	}
}

func (m *SimMMU) record(c Call) {
	m.calls = append(m.calls, c)
}

// Calls returns a snapshot of every MMU call made so far, in order.
func (m *SimMMU) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Pmem exposes the raw frame backing store for pager.Syslog's cross-page
// reads. Safe to read without the simulator's own lock because every
// pager call that mutates pmem is made with the pager's ring lock held,
// and Syslog only calls this while holding that same lock.
func (m *SimMMU) Pmem() []byte {
	return m.pmem
}

// Disk exposes the raw block backing store, mainly for test assertions.
func (m *SimMMU) Disk() []byte {
	return m.disk
}

func (m *SimMMU) ZeroFill(frame pager.FrameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := int(frame) * m.pageSize
	for i := start; i < start+m.pageSize; i++ {
		m.pmem[i] = 0
	}
	m.record(Call{Op: OpZeroFill, Frame: frame})
}

func (m *SimMMU) Resident(pid pager.PID, vaddr uintptr, frame pager.FrameID, prot pager.Prot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: OpResident, Pid: pid, Vaddr: vaddr, Frame: frame, Prot: prot})
}

func (m *SimMMU) NonResident(pid pager.PID, vaddr uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: OpNonResident, Pid: pid, Vaddr: vaddr})
}

func (m *SimMMU) Chprot(pid pager.PID, vaddr uintptr, prot pager.Prot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: OpChprot, Pid: pid, Vaddr: vaddr, Prot: prot})
}

func (m *SimMMU) DiskRead(block pager.BlockID, frame pager.FrameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := int(block) * m.pageSize
	dst := int(frame) * m.pageSize
	copy(m.pmem[dst:dst+m.pageSize], m.disk[src:src+m.pageSize])
	m.record(Call{Op: OpDiskRead, Block: block, Frame: frame})
}

func (m *SimMMU) DiskWrite(frame pager.FrameID, block pager.BlockID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := int(frame) * m.pageSize
	dst := int(block) * m.pageSize
	copy(m.disk[dst:dst+m.pageSize], m.pmem[src:src+m.pageSize])
	m.record(Call{Op: OpDiskWrite, Frame: frame, Block: block})
}
