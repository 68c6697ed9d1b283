package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"framegen/internal/output"
	"framegen/internal/selection"
)

var (
	// ErrSourceUnreadable reports a source that cannot be opened or decoded.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrOutputWrite reports a frame, manifest or archive that could not be persisted.
	ErrOutputWrite = errors.New("output write error")
	// ErrInvalidSelection reports a selection policy that yields no frames in the media.
	ErrInvalidSelection = errors.New("invalid selection")
)

const (
	ManifestName = "manifest.json"
	ArchiveName  = "frames.zip"
)

// Job describes one extraction run. It is not modified once started.
type Job struct {
	SourcePath string           `json:"source_path"`
	OutputDir  string           `json:"output_dir"`
	Selection  selection.Policy `json:"selection"`
	Format     output.Format    `json:"format"`
	// Quality is the JPEG quality (1-100); zero keeps the encoder default.
	Quality int           `json:"quality,omitempty"`
	Width   int           `json:"width,omitempty"`
	Height  int           `json:"height,omitempty"`
	Naming  output.Naming `json:"naming"`
	// Manifest writes manifest.json with every record once the run completes.
	Manifest bool `json:"manifest"`
	// Archive zips every frame into frames.zip once the run completes.
	Archive bool `json:"archive"`
}

func (j Job) Validate() error {
	if strings.TrimSpace(j.SourcePath) == "" {
		return fmt.Errorf("source path is required")
	}
	if strings.TrimSpace(j.OutputDir) == "" {
		return fmt.Errorf("output dir is required")
	}
	if _, err := output.ParseFormat(string(j.Format)); err != nil {
		return err
	}
	if _, err := output.ParseNaming(string(j.Naming)); err != nil {
		return err
	}
	if j.Quality < 0 || j.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", j.Quality)
	}
	if j.Width < 0 || j.Height < 0 {
		return fmt.Errorf("frame size must not be negative, got %dx%d", j.Width, j.Height)
	}
	if err := j.Selection.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	return nil
}

// Record is one extracted frame.
type Record struct {
	Index     int           `json:"index"`
	Timestamp time.Duration `json:"timestamp_ns"`
	Path      string        `json:"path"`
}

// Seconds returns the timestamp in seconds.
func (r Record) Seconds() float64 {
	return r.Timestamp.Seconds()
}

type manifest struct {
	Source    string         `json:"source"`
	Duration  float64        `json:"duration_seconds"`
	Format    output.Format  `json:"format"`
	Frames    []manifestItem `json:"frames"`
	CreatedAt time.Time      `json:"created_at"`
}

type manifestItem struct {
	Index     int     `json:"index"`
	Timestamp float64 `json:"timestamp"`
	File      string  `json:"file"`
}
