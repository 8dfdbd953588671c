package pager

import "testing"

func TestRegistry_LookupUnknownPidPanics(t *testing.T) {
	r := newRegistry()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	r.lookup(42)
}

func TestProcess_PageOutOfRangePanics(t *testing.T) {
	r := newRegistry()
	r.create(1)
	proc := r.lookup(1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	proc.page(0)
}

func TestRegistry_RemoveDeletesRecord(t *testing.T) {
	r := newRegistry()
	r.create(1)
	r.remove(1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on lookup after remove")
		}
	}()
	r.lookup(1)
}
