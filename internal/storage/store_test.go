package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/sim"
)

func runResult(t *testing.T) (*config.Config, *sim.Result) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Name = "test"
	cfg.Body.Particles = 6
	cfg.Run.Duration = 0.1

	s, err := sim.Create(cfg.Body.Particles, cfg.Body.Radius, cfg.Params())
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background(), nil, cfg.SimConfig())
	if err != nil {
		t.Fatal(err)
	}
	result.Metrics["energy"] = 1.5
	return cfg, result
}

func TestNewRunID(t *testing.T) {
	id := NewRunID("balloon", time.Unix(1700000000, 0))
	if !regexp.MustCompile(`^balloon_1700000000_[0-9a-f]{8}$`).MatchString(id) {
		t.Errorf("unexpected run id %q", id)
	}
	if id == NewRunID("balloon", time.Unix(1700000000, 0)) {
		t.Error("run ids within the same second should differ")
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := runResult(t)
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "test_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Body.Particles != 6 || meta.Integrator != "heun" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["energy"])
	}
	if meta.Steps != 5 || meta.Frames != 6 {
		t.Errorf("expected 5 steps and 6 frames, got %d and %d", meta.Steps, meta.Frames)
	}

	times, frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != len(result.Frames) || len(times) != len(result.Times) {
		t.Fatalf("expected %d frames, got %d", len(result.Frames), len(frames))
	}
	for i := range frames {
		if times[i] != result.Times[i] || frames[i].Volume != result.Frames[i].Volume {
			t.Errorf("frame %d header mismatch", i)
		}
		for j := range frames[i].Positions {
			if frames[i].Positions[j] != result.Frames[i].Positions[j] ||
				frames[i].Velocities[j] != result.Frames[i].Velocities[j] {
				t.Errorf("frame %d particle %d mismatch", i, j)
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected an empty list, got %v, %v", runs, err)
	}

	cfg, result := runResult(t)
	for i := 0; i < 2; i++ {
		if _, err := st.Save(cfg, result); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "garbage"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestLoadFrames_Malformed(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	runDir := filepath.Join(dir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "time,volume,x0,y0,vx0,vy0\n0,1,0,1,0\n"
	if err := os.WriteFile(filepath.Join(runDir, framesFile), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := st.LoadFrames("bad"); err == nil {
		t.Error("expected an error for a short row")
	}
}

func TestExportJSON(t *testing.T) {
	cfg, result := runResult(t)
	meta := Metadata(cfg, result)

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, result.Times, result.Frames); err != nil {
		t.Fatal(err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Name != "test" || len(decoded.Series) != len(result.Frames) {
		t.Errorf("unexpected export %+v", decoded.RunMetadata)
	}
	if decoded.Series[0].Positions[0] != result.Frames[0].Positions[0] {
		t.Error("positions not exported")
	}
}

func TestDelete(t *testing.T) {
	st := New(t.TempDir())
	cfg, result := runResult(t)
	id, err := st.Save(cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	if err := st.Delete("../" + id); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Error("expected path traversal to be rejected")
	}
	if err := st.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(id); err == nil {
		t.Error("run still loadable after delete")
	}
}
