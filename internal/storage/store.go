package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/psbody/internal/config"
	"github.com/san-kum/psbody/internal/dynamo"
	"github.com/san-kum/psbody/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type BodyMetadata struct {
	Particles    int     `json:"particles"`
	Radius       float64 `json:"radius"`
	Mass         float64 `json:"mass"`
	Elasticity   float64 `json:"elasticity"`
	Damping      float64 `json:"damping"`
	Pressure     float64 `json:"pressure"`
	GravityScale float64 `json:"gravity_scale"`
	Volume       string  `json:"volume"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Body       BodyMetadata       `json:"body"`
	Tick       float64            `json:"tick"`
	Iterations int                `json:"iterations"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Host       string             `json:"host"`
	Steps      int                `json:"steps"`
	Frames     int                `json:"frames"`
	Metrics    map[string]float64 `json:"metrics"`
}

// NewRunID returns <name>_<unix>_<first 8 hex digits of a UUID>.
func NewRunID(name string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", name, now.Unix(), uuid.NewString()[:8])
}

func Metadata(cfg *config.Config, result *sim.Result) RunMetadata {
	return RunMetadata{
		Name: cfg.Name,
		Body: BodyMetadata{
			Particles:    cfg.Body.Particles,
			Radius:       cfg.Body.Radius,
			Mass:         cfg.Body.Mass,
			Elasticity:   cfg.Body.Elasticity,
			Damping:      cfg.Body.Damping,
			Pressure:     cfg.Body.Pressure,
			GravityScale: cfg.Body.GravityScale,
			Volume:       cfg.Body.Volume,
		},
		Tick:       cfg.Run.Tick,
		Iterations: cfg.Run.Iterations,
		Duration:   cfg.Run.Duration,
		Integrator: cfg.Run.Integrator,
		Host:       cfg.World.Host,
		Steps:      result.StepsTaken,
		Frames:     len(result.Frames),
		Metrics:    result.Metrics,
	}
}

// Save writes metadata.json and frames.csv into a fresh run directory and
// returns the run ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	meta := Metadata(cfg, result)
	meta.ID = NewRunID(cfg.Name, now)
	meta.Timestamp = now

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFrames(csvFile, result.Times, result.Frames); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteFrames writes one CSV row per frame: time, volume and then x, y, vx,
// vy for every particle.
func WriteFrames(out io.Writer, times []float64, frames []dynamo.Frame) error {
	w := csv.NewWriter(out)

	if len(frames) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"time", "volume"}
	for i := 0; i < frames[0].Len(); i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, f := range frames {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(times[i]), formatFloat(f.Volume))
		for j := range f.Positions {
			row = append(row,
				formatFloat(f.Positions[j].X), formatFloat(f.Positions[j].Y),
				formatFloat(f.Velocities[j].X), formatFloat(f.Velocities[j].Y))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back. Normals are not stored and come back nil.
func (s *Store) LoadFrames(runID string) ([]float64, []dynamo.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []dynamo.Frame{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	frames := make([]dynamo.Frame, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) < 2 || (len(record)-2)%4 != 0 {
			return nil, nil, fmt.Errorf("run %s: row %d has %d columns", runID, i+1, len(record))
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: row %d column %d: %w", runID, i+1, j, err)
			}
			vals[j] = v
		}

		n := (len(vals) - 2) / 4
		f := dynamo.Frame{
			Positions:  make([]dynamo.Vec2, n),
			Velocities: make([]dynamo.Vec2, n),
			Volume:     vals[1],
		}
		for k := 0; k < n; k++ {
			base := 2 + 4*k
			f.Positions[k] = dynamo.Vec2{X: vals[base], Y: vals[base+1]}
			f.Velocities[k] = dynamo.Vec2{X: vals[base+2], Y: vals[base+3]}
		}

		times = append(times, vals[0])
		frames = append(frames, f)
	}

	return times, frames, nil
}

// CopyFrames streams a run's frames.csv unchanged to w.
func (s *Store) CopyFrames(runID string, w io.Writer) error {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}

func (s *Store) Delete(runID string) error {
	if runID == "" || filepath.Base(runID) != runID {
		return fmt.Errorf("%w: invalid run id %q", dynamo.ErrInvalidParameter, runID)
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}
