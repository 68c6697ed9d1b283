package extract

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"framegen/internal/media"
	"framegen/internal/output"
	"framegen/internal/selection"
)

// Orchestrator runs extraction jobs against a media decoder.
type Orchestrator struct {
	decoder media.Decoder
	logger  *zap.Logger
}

func New(decoder media.Decoder, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{decoder: decoder, logger: logger}
}

// Run extracts every planned frame of job and returns the records in
// timestamp order.
func (o *Orchestrator) Run(ctx context.Context, job Job) ([]Record, error) {
	seq, err := o.Start(ctx, job)
	if err != nil {
		return nil, err
	}
	defer seq.Close()

	records := make([]Record, 0, seq.Planned())
	for seq.Next(ctx) {
		records = append(records, seq.Record())
	}
	if err := seq.Err(); err != nil {
		return records, err
	}
	return records, nil
}

// Start opens the source, plans the frames and prepares the output
// directory. Nothing is decoded until Next is called on the returned
// sequence.
func (o *Orchestrator) Start(ctx context.Context, job Job) (*Sequence, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	format, _ := output.ParseFormat(string(job.Format))
	naming, _ := output.ParseNaming(string(job.Naming))

	src, err := o.decoder.Open(ctx, job.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSourceUnreadable, job.SourcePath, err)
	}
	info := src.Info()

	plan, err := selection.Plan(job.Selection, info.Duration)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}

	writer := output.NewWriter(job.OutputDir, format, job.Quality)
	if err := writer.Prepare(); err != nil {
		src.Close()
		return nil, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	o.logger.Info("extraction started",
		zap.String("source", job.SourcePath),
		zap.String("output_dir", job.OutputDir),
		zap.Duration("duration", info.Duration),
		zap.Int("planned_frames", len(plan)),
	)

	return &Sequence{
		job:    job,
		naming: naming,
		format: format,
		src:    src,
		info:   info,
		plan:   plan,
		writer: writer,
		logger: o.logger.With(zap.String("source", job.SourcePath)),
	}, nil
}

// Sequence yields the frames of one job lazily, in ascending timestamp
// order. It cannot be restarted. The source is released when the sequence
// ends, fails or is closed.
type Sequence struct {
	job    Job
	naming output.Naming
	format output.Format
	src    media.Source
	info   media.Info
	plan   []time.Duration
	writer *output.Writer
	logger *zap.Logger

	next    int
	current Record
	records []Record
	err     error
	done    bool
}

// Planned returns the number of frames the sequence will produce if it
// completes.
func (s *Sequence) Planned() int {
	return len(s.plan)
}

func (s *Sequence) Info() media.Info {
	return s.info
}

// Next extracts the next frame. It returns false once every frame has been
// produced or an error occurred; check Err afterwards.
func (s *Sequence) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.fail(err)
		return false
	}
	if s.next >= len(s.plan) {
		s.finish()
		return false
	}

	index := s.next
	ts := s.plan[index]
	img, err := s.src.FrameAt(ctx, ts)
	if err != nil {
		if ctx.Err() != nil {
			s.fail(ctx.Err())
		} else {
			s.fail(fmt.Errorf("%w: frame %d at %s: %w", ErrSourceUnreadable, index, ts, err))
		}
		return false
	}

	name := s.naming.FileName(index, ts, s.format)
	path, err := s.writer.WriteImage(name, resize(img, s.job.Width, s.job.Height))
	if err != nil {
		s.fail(fmt.Errorf("%w: %w", ErrOutputWrite, err))
		return false
	}

	s.current = Record{Index: index, Timestamp: ts, Path: path}
	s.records = append(s.records, s.current)
	s.next++
	s.logger.Debug("frame written", zap.Int("index", index), zap.Duration("timestamp", ts), zap.String("path", path))
	return true
}

// Record returns the frame produced by the last successful Next.
func (s *Sequence) Record() Record {
	return s.current
}

func (s *Sequence) Err() error {
	return s.err
}

// Close releases the source. It is safe to call more than once.
func (s *Sequence) Close() error {
	if s.src == nil {
		return nil
	}
	err := s.src.Close()
	s.src = nil
	s.done = true
	return err
}

func (s *Sequence) fail(err error) {
	s.err = err
	s.logger.Error("extraction failed", zap.Int("frames_written", len(s.records)), zap.Error(err))
	s.Close()
}

func (s *Sequence) finish() {
	if err := s.Close(); err != nil {
		s.logger.Warn("close source", zap.Error(err))
	}
	if s.job.Manifest {
		if err := s.writeManifest(); err != nil {
			s.fail(fmt.Errorf("%w: %w", ErrOutputWrite, err))
			return
		}
	}
	if s.job.Archive {
		paths := make([]string, len(s.records))
		for i, r := range s.records {
			paths[i] = r.Path
		}
		if err := output.Archive(paths, filepath.Join(s.job.OutputDir, ArchiveName)); err != nil {
			s.fail(fmt.Errorf("%w: %w", ErrOutputWrite, err))
			return
		}
	}
	s.logger.Info("extraction finished", zap.Int("frames", len(s.records)))
}

func (s *Sequence) writeManifest() error {
	m := manifest{
		Source:    s.job.SourcePath,
		Duration:  s.info.Duration.Seconds(),
		Format:    s.format,
		Frames:    make([]manifestItem, len(s.records)),
		CreatedAt: time.Now().UTC(),
	}
	for i, r := range s.records {
		m.Frames[i] = manifestItem{Index: r.Index, Timestamp: r.Seconds(), File: filepath.Base(r.Path)}
	}
	_, err := s.writer.WriteJSON(ManifestName, m)
	return err
}

// resize fits img inside width x height and pads the rest black. With only
// one dimension set the other follows the aspect ratio.
func resize(img image.Image, width, height int) image.Image {
	switch {
	case width > 0 && height > 0:
		fitted := imaging.Fit(img, width, height, imaging.Lanczos)
		return imaging.PasteCenter(imaging.New(width, height, color.Black), fitted)
	case width > 0 || height > 0:
		return imaging.Resize(img, width, height, imaging.Lanczos)
	default:
		return img
	}
}
