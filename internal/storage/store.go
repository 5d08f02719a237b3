package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/takeoff/internal/aero"
	"github.com/san-kum/takeoff/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var sampleHeader = []string{"time", "velocity", "acceleration", "drag", "lift", "weight", "altitude"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Params    aero.Params        `json:"params"`
	Constants aero.Constants     `json:"constants"`
	Dt        float64            `json:"dt"`
	MaxSteps  int                `json:"max_steps"`
	MaxTime   float64            `json:"max_time"`
	Steps     int                `json:"steps"`
	Phase     string             `json:"phase"`
	Airborne  bool               `json:"airborne"`
	Error     string             `json:"error,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes the run under a new directory and returns its id. runErr is
// recorded in the metadata so diverged runs can be inspected later.
func (s *Store) Save(label string, cfg dynamo.Config, result *dynamo.Result, runErr error) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", label, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Label:     label,
		Timestamp: now,
		Params:    result.Params,
		Constants: result.Constants,
		Dt:        cfg.Dt,
		MaxSteps:  cfg.MaxSteps,
		MaxTime:   cfg.MaxTime,
		Steps:     result.Steps,
		Phase:     result.Phase.String(),
		Airborne:  result.Airborne,
		Metrics:   result.Metrics,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(sampleHeader); err != nil {
		return "", err
	}
	for _, smp := range result.Samples {
		if err := w.Write(formatSample(smp)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSample(s dynamo.Sample) []string {
	vals := []float64{s.Time, s.Velocity, s.Acceleration, s.Drag, s.Lift, s.Weight, s.Altitude}
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	return row
}

// List returns the metadata of every run, oldest first. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]dynamo.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sampleHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.Sample{}, nil
	}

	samples := make([]dynamo.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", samplesFile, i+2, err)
			}
			vals[j] = v
		}
		samples = append(samples, dynamo.Sample{
			Time:         vals[0],
			Velocity:     vals[1],
			Acceleration: vals[2],
			Drag:         vals[3],
			Lift:         vals[4],
			Weight:       vals[5],
			Altitude:     vals[6],
		})
	}

	return samples, nil
}
