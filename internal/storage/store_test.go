package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/dynamo"
)

func referenceRun(t *testing.T) (dynamo.Config, *dynamo.Result) {
	t.Helper()
	cfg := dynamo.DefaultConfig()
	result, err := dynamo.NewRunner(cfg).Run(context.Background(), aero.DefaultParams())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	result.Metrics["ground_roll"] = 1234.5
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := referenceRun(t)
	runID, err := st.Save("a320", cfg, result, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "a320_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Params != result.Params {
		t.Errorf("params mismatch: %+v", meta.Params)
	}
	if meta.Steps != result.Steps || meta.Phase != "target_reached" || !meta.Airborne {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["ground_roll"] != 1234.5 {
		t.Errorf("expected ground_roll 1234.5, got %f", meta.Metrics["ground_roll"])
	}
	if meta.Error != "" {
		t.Errorf("expected no error, got %q", meta.Error)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != len(result.Samples) {
		t.Fatalf("expected %d samples, got %d", len(result.Samples), len(samples))
	}
	last, want := samples[len(samples)-1], result.Final()
	if diff := last.Velocity - want.Velocity; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("velocity mismatch: %f vs %f", last.Velocity, want.Velocity)
	}
}

func TestStoreSaveDiverged(t *testing.T) {
	st := New(t.TempDir())

	p := aero.DefaultParams()
	p.Thrust, p.DragCoefficient = 1000, 0.2
	cfg := dynamo.Config{Dt: 0.1, MaxSteps: 50}
	result, runErr := dynamo.NewRunner(cfg).Run(context.Background(), p)
	if !errors.Is(runErr, dynamo.ErrDiverged) {
		t.Fatalf("expected divergence, got %v", runErr)
	}

	runID, err := st.Save("underpowered", cfg, result, runErr)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Error == "" || meta.Phase != "accelerating" {
		t.Errorf("expected diverged metadata, got %+v", meta)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, result := referenceRun(t)
	if _, err := st.Save("test", cfg, result, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	cfg, result := referenceRun(t)
	runID, err := st.Save("test", cfg, result, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, samplesFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExport(t *testing.T) {
	_, result := referenceRun(t)
	meta := &RunMetadata{ID: "x", Steps: result.Steps}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, result.Samples); err != nil {
		t.Fatalf("export json failed: %v", err)
	}
	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.ID != "x" || len(decoded.Samples) != len(result.Samples) {
		t.Errorf("unexpected export %+v", decoded.RunMetadata)
	}

	buf.Reset()
	if err := ExportCSV(&buf, result.Samples); err != nil {
		t.Fatalf("export csv failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(result.Samples)+1 {
		t.Errorf("expected %d csv lines, got %d", len(result.Samples)+1, len(lines))
	}
	if lines[0] != strings.Join(sampleHeader, ",") {
		t.Errorf("unexpected header %q", lines[0])
	}
}
