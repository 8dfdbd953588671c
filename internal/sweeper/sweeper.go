// Package sweeper runs a periodic cron job (github.com/robfig/cron/v3)
// that snapshots Pager.Stats and logs/audits it.
package sweeper

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"vmpager/internal/audit"
	"vmpager/internal/pager"
)

// Sweeper periodically reports pool utilization.
type Sweeper struct {
	cron    *cron.Cron
	pager   *pager.Pager
	audit   *audit.Logger
	entryID cron.EntryID
}

// New builds a sweeper over p, logging through auditLog (may be a no-op
// Logger). spec is a standard cron expression, e.g. "@every 30s".
func New(p *pager.Pager, auditLog *audit.Logger, spec string) (*Sweeper, error) {
	s := &Sweeper{
		cron:  cron.New(),
		pager: p,
		audit: auditLog,
	}
	id, err := s.cron.AddFunc(spec, s.report)
	if err != nil {
		return nil, err
	}
	s.entryID = id
	return s, nil
}

// Start begins the cron loop in its own goroutine (cron.Cron.Start already
// does this internally).
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for any in-flight job to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) report() {
	stats := s.pager.Stats()
	log.Printf("pager stats: frames=%d/%d blocks=%d/%d procs=%d",
		stats.FreeFrames, stats.TotalFrames,
		stats.FreeBlocks, stats.TotalBlocks,
		stats.ProcessCount)

	// The cron callback signature carries no request-scoped context, so
	// each sweep gets its own background one.
	if err := s.audit.Record(context.Background(), audit.Event{
		TraceID: audit.NewTraceID(),
		Kind:    "stats_sweep",
	}); err != nil {
		log.Printf("sweeper: audit record failed: %v", err)
	}
}
