package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pager.yaml")
	doc := "nframes: 8\nnblocks: 32\ngrpcAddr: \"0.0.0.0:9999\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NFrames != 8 {
		t.Errorf("NFrames = %d, want 8", cfg.NFrames)
	}
	if cfg.NBlocks != 32 {
		t.Errorf("NBlocks = %d, want 32", cfg.NBlocks)
	}
	if cfg.GRPCAddr != "0.0.0.0:9999" {
		t.Errorf("GRPCAddr = %q, want 0.0.0.0:9999", cfg.GRPCAddr)
	}
	// Fields the fixture omits keep Default()'s values.
	if cfg.PageSize == 0 {
		t.Error("PageSize should default, not zero out")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_RejectsBadPageSize(t *testing.T) {
	cases := []string{
		"pageSize: 3\n",      // not a power of two, below the minimum
		"pageSize: 5000\n",   // not a power of two
		"pageSize: 2048\n",   // power of two, below MinPageSize
		"pageSize: 131072\n", // power of two, above MaxPageSize
	}
	for _, doc := range cases {
		dir := t.TempDir()
		path := filepath.Join(dir, "pager.yaml")
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("Load(%q): expected error, got nil", doc)
		}
	}
}

func TestDefault_PagerConfigTranslation(t *testing.T) {
	cfg := Default()
	pc := cfg.PagerConfig()
	if pc.NFrames != cfg.NFrames || pc.NBlocks != cfg.NBlocks {
		t.Fatalf("PagerConfig did not carry over pool sizes: %+v vs %+v", pc, cfg)
	}
	if uint64(pc.Base) != cfg.BaseAddr {
		t.Fatalf("PagerConfig.Base = %#x, want %#x", pc.Base, cfg.BaseAddr)
	}
}
