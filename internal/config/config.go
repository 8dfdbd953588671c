// Package config loads the pager daemon's YAML configuration: read the
// whole file, unmarshal with gopkg.in/yaml.v3, fail loudly on a bad
// document.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vmpager/internal/pager"
)

// Config is the on-disk shape of pager.yaml.
type Config struct {
	NFrames       int    `yaml:"nframes"`
	NBlocks       int    `yaml:"nblocks"`
	PageSize      int    `yaml:"pageSize"`
	BaseAddr      uint64 `yaml:"baseAddr"`
	GRPCAddr      string `yaml:"grpcAddr"`
	HTTPAddr      string `yaml:"httpAddr"`
	AuditDB       string `yaml:"auditDB"`
	SweepInterval string `yaml:"sweepInterval"`
}

// Default returns the configuration used when no file is supplied: a small
// pool big enough to drive the seed scenarios, audit disabled, and the gRPC
// and HTTP listeners bound to loopback ports 7777 and 7778.
func Default() *Config {
	return &Config{
		NFrames:       16,
		NBlocks:       64,
		PageSize:      pager.DefaultPageSize,
		BaseAddr:      0x10000000,
		GRPCAddr:      "127.0.0.1:7777",
		HTTPAddr:      "127.0.0.1:7778",
		AuditDB:       "",
		SweepInterval: "30s",
	}
}

// MinPageSize and MaxPageSize bound the page sizes Load will accept.
const (
	MinPageSize = 4096
	MaxPageSize = 65536
)

// Load reads and parses a YAML config file at path, filling in Default()
// for any field the file omits, then validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks fields whose values would otherwise corrupt address
// arithmetic or silently misconfigure the pager.
func (c *Config) validate() error {
	ps := c.PageSize
	if ps < MinPageSize || ps > MaxPageSize || ps&(ps-1) != 0 {
		return fmt.Errorf("config: page size %d must be a power of two in [%d, %d]", ps, MinPageSize, MaxPageSize)
	}
	return nil
}

// PagerConfig translates the YAML document into the internal pager's
// Config shape.
func (c *Config) PagerConfig() pager.Config {
	pageSize := c.PageSize
	if pageSize == 0 {
		pageSize = pager.DefaultPageSize
	}
	return pager.Config{
		NFrames:  c.NFrames,
		NBlocks:  c.NBlocks,
		Base:     uintptr(c.BaseAddr),
		PageSize: pageSize,
	}
}
