// Command pagerd runs the paging core behind the control-plane RPC facade:
// parse flags, build the core state, start gRPC and HTTP listeners side by
// side.
package main

import (
	"flag"
	"log"

	"vmpager/internal/audit"
	"vmpager/internal/config"
	"vmpager/internal/mmu"
	"vmpager/internal/pager"
	"vmpager/internal/rpcserver"
	"vmpager/internal/sweeper"
)

var (
	flagConfig = flag.String("config", "", "path to pager.yaml (defaults built in if empty)")
	flagGRPC   = flag.String("grpc", "", "gRPC listen address (overrides config)")
	flagHTTP   = flag.String("http", "", "HTTP listen address (overrides config)")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *flagConfig != "" {
		loaded, err := config.Load(*flagConfig)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	if *flagGRPC != "" {
		cfg.GRPCAddr = *flagGRPC
	}
	if *flagHTTP != "" {
		cfg.HTTPAddr = *flagHTTP
	}

	auditLog, err := audit.Open(cfg.AuditDB)
	if err != nil {
		log.Fatalf("audit: %v", err)
	}
	defer auditLog.Close()

	sim := mmu.New(cfg.NFrames, cfg.NBlocks, cfg.PageSize)
	core := pager.New(cfg.PagerConfig(), sim)

	srv := &rpcserver.Server{Pager: core, Audit: auditLog}

	sweep, err := sweeper.New(core, auditLog, "@every "+cfg.SweepInterval)
	if err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	sweep.Start()
	defer sweep.Stop()

	if cfg.GRPCAddr != "" {
		go func() {
			log.Printf("gRPC listening on %s", cfg.GRPCAddr)
			if err := rpcserver.ListenAndServeGRPC(cfg.GRPCAddr, srv); err != nil {
				log.Printf("gRPC serve error: %v", err)
			}
		}()
	}

	if cfg.HTTPAddr != "" {
		log.Printf("HTTP listening on %s", cfg.HTTPAddr)
		if err := rpcserver.ListenAndServeHTTP(cfg.HTTPAddr, srv); err != nil {
			log.Fatalf("HTTP serve error: %v", err)
		}
		return
	}
	select {}
}
