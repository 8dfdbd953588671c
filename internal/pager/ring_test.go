package pager

import "testing"

func TestRing_AppendAndUnlinkReusesSlot(t *testing.T) {
	r := newRing()
	idx0 := r.append(pte{pageNumber: 0, frame: 0, inMem: true})
	idx1 := r.append(pte{pageNumber: 1, frame: 1, inMem: true})
	if r.count != 2 {
		t.Fatalf("count = %d, want 2", r.count)
	}

	r.unlink(idx0)
	if r.count != 1 {
		t.Fatalf("count after unlink = %d, want 1", r.count)
	}
	if r.head != idx1 {
		t.Fatalf("head = %v, want %v", r.head, idx1)
	}

	idx2 := r.append(pte{pageNumber: 2, frame: 2, inMem: true})
	if idx2 != idx0 {
		t.Fatalf("expected freed slot %v to be reused, got %v", idx0, idx2)
	}
}

func TestRing_VictimDemotesThenEvicts(t *testing.T) {
	r := newRing()
	r.append(pte{pageNumber: 0, pid: 1, frame: 0, prot: ProtRead, inMem: true})
	r.append(pte{pageNumber: 1, pid: 1, frame: 1, prot: ProtRead, inMem: true})

	mmu := &fakeMMU{pmem: make([]byte, 2*DefaultPageSize)}
	victim := r.victim(mmu, testBase, DefaultPageSize)

	// Both entries start at READ, so the first full pass only demotes —
	// the victim is whichever slot the cursor lands on with prot==NONE,
	// which is the head (first demoted, first revisited).
	if r.slots[victim].pageNumber != 0 {
		t.Fatalf("victim page = %d, want 0", r.slots[victim].pageNumber)
	}
	if len(mmu.chprot) != 2 {
		t.Fatalf("chprot calls = %d, want 2 (one demotion per entry)", len(mmu.chprot))
	}
}

func TestRing_VictimSkipsNonResident(t *testing.T) {
	r := newRing()
	r.append(pte{pageNumber: 0, pid: 1, frame: 0, prot: ProtNone, inMem: false})
	r.append(pte{pageNumber: 1, pid: 1, frame: 1, prot: ProtRead, inMem: true})

	mmu := &fakeMMU{pmem: make([]byte, 2*DefaultPageSize)}
	victim := r.victim(mmu, testBase, DefaultPageSize)
	if r.slots[victim].pageNumber != 1 {
		t.Fatalf("victim page = %d, want 1 (the only in_mem entry)", r.slots[victim].pageNumber)
	}
}
