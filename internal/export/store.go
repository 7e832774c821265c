// Package export persists rendered runs: a directory per run holding
// a JSON manifest, raw float32 frame fields, and shaded PNG images.
package export

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/san-kum/chaoscope/internal/diverge"
)

// Store roots all runs under one base directory.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunManifest describes one stored run and its frame files.
type RunManifest struct {
	ID         string      `json:"id"`
	System     string      `json:"system"`
	Integrator string      `json:"integrator"`
	View       string      `json:"view"`
	Timestamp  time.Time   `json:"timestamp"`
	Seed       int64       `json:"seed"`
	Dt         float64     `json:"dt"`
	Resolution int         `json:"resolution"`
	Frames     []FrameInfo `json:"frames"`
}

// FrameInfo locates one frame field within a run directory.
type FrameInfo struct {
	Index  int     `json:"index"`
	Chunks int     `json:"chunks"`
	Time   float64 `json:"time"`
	File   string  `json:"file"`
}

// Run is an open run directory accepting frames. Finish writes the
// manifest; a run without a manifest is ignored by List.
type Run struct {
	dir      string
	manifest RunManifest
}

// Create makes the run directory. An empty ID is derived from the
// system name and the current time, the directory name convention
// used for every run.
func (s *Store) Create(meta RunManifest) (*Run, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.System, time.Now().Unix())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Frames = nil

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Run{dir: dir, manifest: meta}, nil
}

// WriteFrame stores the field as little-endian float32s and records
// it in the manifest.
func (r *Run) WriteFrame(f *diverge.Field, chunks int, simTime float64) error {
	name := fmt.Sprintf("frame_%04d.f32", len(r.manifest.Frames))
	file, err := os.Create(filepath.Join(r.dir, name))
	if err != nil {
		return err
	}
	defer file.Close()

	if err := binary.Write(file, binary.LittleEndian, f.Pix); err != nil {
		return err
	}

	r.manifest.Frames = append(r.manifest.Frames, FrameInfo{
		Index:  len(r.manifest.Frames),
		Chunks: chunks,
		Time:   simTime,
		File:   name,
	})
	return nil
}

// Finish writes the manifest and closes out the run.
func (r *Run) Finish() error {
	file, err := os.Create(filepath.Join(r.dir, "manifest.json"))
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(r.manifest)
}

// Dir returns the run's directory, for callers placing extra files
// like PNGs alongside the frames.
func (r *Run) Dir() string { return r.dir }

// ID returns the run identifier, derived at Create when none was given.
func (r *Run) ID() string { return r.manifest.ID }

// List returns the manifest of every finished run under the store.
func (s *Store) List() ([]RunManifest, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunManifest{}, nil
		}
		return nil, err
	}

	runs := make([]RunManifest, 0)
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
	return runs, nil
}

// Load reads one run's manifest.
func (s *Store) Load(runID string) (*RunManifest, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "manifest.json"))
	if err != nil {
		return nil, err
	}
	var meta RunManifest
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrame reads one stored frame back into a field.
func (s *Store) LoadFrame(meta *RunManifest, index int) (*diverge.Field, error) {
	if index < 0 || index >= len(meta.Frames) {
		return nil, fmt.Errorf("export: frame %d out of range (run has %d)", index, len(meta.Frames))
	}

	file, err := os.Open(filepath.Join(s.baseDir, meta.ID, meta.Frames[index].File))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f := diverge.NewField(meta.Resolution)
	if err := binary.Read(file, binary.LittleEndian, f.Pix); err != nil {
		return nil, err
	}
	return f, nil
}
