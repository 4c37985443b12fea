package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/psbody/internal/dynamo"
)

type ExportFrame struct {
	Time       float64       `json:"time"`
	Volume     float64       `json:"volume"`
	Positions  []dynamo.Vec2 `json:"positions"`
	Velocities []dynamo.Vec2 `json:"velocities"`
}

type ExportData struct {
	RunMetadata
	Times   []float64     `json:"times"`
	Volumes []float64     `json:"volumes"`
	Series  []ExportFrame `json:"frames"`
}

func NewExportData(meta RunMetadata, times []float64, frames []dynamo.Frame) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Times:       times,
		Volumes:     make([]float64, len(frames)),
		Series:      make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		data.Volumes[i] = f.Volume
		data.Series[i] = ExportFrame{
			Time:       times[i],
			Volume:     f.Volume,
			Positions:  f.Positions,
			Velocities: f.Velocities,
		}
	}
	return data
}

// ExportJSON writes a run with its frames as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, times []float64, frames []dynamo.Frame) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, times, frames))
}

// ExportRun loads a stored run and writes it as JSON.
func (s *Store) ExportRun(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, *meta, times, frames)
}
