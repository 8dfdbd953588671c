package vmpager_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	internalmmu "vmpager/internal/mmu"
	"vmpager/internal/pager"
)

// scenariosFile mirrors the shape of testdata/scenarios.yml.
type scenariosFile struct {
	Scenarios []struct {
		Name    string `yaml:"name"`
		NFrames int    `yaml:"nframes"`
		NBlocks int    `yaml:"nblocks"`
		Steps   []struct {
			Op           string   `yaml:"op"`
			Pid          int64    `yaml:"pid"`
			Page         *int     `yaml:"page"`
			VaddrOffset  *int64   `yaml:"vaddr_offset"`
			Len          int      `yaml:"len"`
			ExpectCalls  []string `yaml:"expect_calls"`
			ExpectError  string   `yaml:"expect_error"`
		} `yaml:"steps"`
		ExpectStats *struct {
			FreeFrames int `yaml:"free_frames"`
			FreeBlocks int `yaml:"free_blocks"`
		} `yaml:"expect_stats"`
	} `yaml:"scenarios"`
}

const scenarioBase = uintptr(0x10000000)
const scenarioPageSize = 4096

func TestSeedScenarios(t *testing.T) {
	candidates := []string{
		filepath.Join("testdata", "scenarios.yml"),
		filepath.Join("..", "testdata", "scenarios.yml"),
	}
	var raw []byte
	for _, c := range candidates {
		if b, err := os.ReadFile(c); err == nil {
			raw = b
			break
		}
	}
	if raw == nil {
		t.Fatalf("failed to find testdata/scenarios.yml (tried: %v)", candidates)
	}

	var file scenariosFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		t.Fatalf("parse scenarios.yml: %v", err)
	}

	for _, sc := range file.Scenarios {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			sim := internalmmu.New(sc.NFrames, sc.NBlocks, scenarioPageSize)
			core := pager.New(pager.Config{
				NFrames:  sc.NFrames,
				NBlocks:  sc.NBlocks,
				Base:     scenarioBase,
				PageSize: scenarioPageSize,
			}, sim)

			for i, step := range sc.Steps {
				pid := pager.PID(step.Pid)
				startCalls := len(sim.Calls())

				switch step.Op {
				case "create":
					core.Create(pid)
				case "extend":
					if _, err := core.Extend(pid); err != nil {
						t.Fatalf("step %d extend: %v", i, err)
					}
				case "fault":
					vaddr := scenarioBase + uintptr(*step.Page)*scenarioPageSize
					core.Fault(pid, vaddr)
				case "syslog":
					vaddr := uintptr(int64(scenarioBase) + *step.VaddrOffset)
					_, err := core.Syslog(pid, vaddr, step.Len)
					checkExpectedError(t, i, step.ExpectError, err)
				case "destroy":
					core.Destroy(pid)
				default:
					t.Fatalf("step %d: unknown op %q", i, step.Op)
				}

				if len(step.ExpectCalls) > 0 {
					got := sim.Calls()[startCalls:]
					if len(got) != len(step.ExpectCalls) {
						t.Fatalf("step %d: got %d mmu calls %v, want %d (%v)", i, len(got), got, len(step.ExpectCalls), step.ExpectCalls)
					}
					for j, c := range got {
						if string(c.Op) != step.ExpectCalls[j] {
							t.Fatalf("step %d call %d: got %s, want %s", i, j, c.Op, step.ExpectCalls[j])
						}
					}
				}
			}

			if sc.ExpectStats != nil {
				stats := core.Stats()
				if stats.FreeFrames != sc.ExpectStats.FreeFrames {
					t.Errorf("free_frames: got %d, want %d", stats.FreeFrames, sc.ExpectStats.FreeFrames)
				}
				if stats.FreeBlocks != sc.ExpectStats.FreeBlocks {
					t.Errorf("free_blocks: got %d, want %d", stats.FreeBlocks, sc.ExpectStats.FreeBlocks)
				}
			}
		})
	}
}

func checkExpectedError(t *testing.T, step int, want string, got error) {
	t.Helper()
	switch want {
	case "":
		if got != nil {
			t.Fatalf("step %d: unexpected error %v", step, got)
		}
	case "bad_range":
		if !errors.Is(got, pager.ErrBadRange) {
			t.Fatalf("step %d: got %v, want ErrBadRange", step, got)
		}
	case "not_resident":
		if !errors.Is(got, pager.ErrNotResident) {
			t.Fatalf("step %d: got %v, want ErrNotResident", step, got)
		}
	default:
		t.Fatalf("step %d: unknown expect_error %q", step, want)
	}
}
