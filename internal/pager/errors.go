package pager

import (
	"errors"
	"fmt"
)

// Recoverable errors: these cross the exported boundary as a sentinel
// return value rather than a panic.
var (
	// ErrPoolExhausted is returned by Extend when the block pool is empty.
	ErrPoolExhausted = errors.New("pager: block pool exhausted")

	// ErrBadRange is returned by Syslog for an out-of-range request.
	ErrBadRange = errors.New("pager: syslog range out of bounds")

	// ErrNotResident is returned by Syslog when a page in the requested
	// range is not currently resident. See DESIGN.md "Open Question
	// decisions" #2: this implementation does not fault pages in from
	// Syslog.
	ErrNotResident = errors.New("pager: page not resident")
)

// Programming errors always panic rather than return an error value —
// these conditions indicate a caller bug, not something a caller can
// recover from.

func panicNoSuchProcess(pid PID) {
	panic(fmt.Sprintf("pager: no such process: pid=%d", pid))
}

func panicDuplicateProcess(pid PID) {
	panic(fmt.Sprintf("pager: process already exists: pid=%d", pid))
}

func panicNoSuchPage(pid PID, pageNumber int) {
	panic(fmt.Sprintf("pager: no such page: pid=%d page=%d", pid, pageNumber))
}
