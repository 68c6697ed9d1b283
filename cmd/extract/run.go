package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"framegen/internal/config"
	"framegen/internal/extract"
	"framegen/internal/logger"
	"framegen/internal/media"
	"framegen/internal/publish"
)

const version = "0.1.0"

// Process exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfig      = 2
	exitSelection   = 3
	exitSource      = 4
	exitOutputWrite = 5
)

func exitCode(err error) int {
	var ec cli.ExitCoder
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ec):
		return ec.ExitCode()
	case errors.Is(err, config.ErrInvalid):
		return exitConfig
	case errors.Is(err, extract.ErrInvalidSelection):
		return exitSelection
	case errors.Is(err, extract.ErrSourceUnreadable):
		return exitSource
	case errors.Is(err, extract.ErrOutputWrite):
		return exitOutputWrite
	default:
		return exitFailure
	}
}

type runner struct {
	decoder media.Decoder
	stdout  io.Writer
}

// loadConfig layers the config file, the environment and then the flags that
// were set explicitly.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(cmd, &cfg)
	return cfg, nil
}

func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("interval") {
		cfg.Interval = cmd.Float64("interval")
		cfg.Timestamps = nil
	}
	if cmd.IsSet("at") {
		cfg.Timestamps = cmd.Float64Slice("at")
	}
	if cmd.IsSet("include-end") {
		cfg.IncludeEnd = cmd.Bool("include-end")
	}
	if cmd.IsSet("max-frames") {
		cfg.MaxFrames = cmd.Int("max-frames")
	}
	if cmd.IsSet("format") {
		cfg.Format = cmd.String("format")
	}
	if cmd.IsSet("quality") {
		cfg.Quality = cmd.Int("quality")
	}
	if cmd.IsSet("width") {
		cfg.Width = cmd.Int("width")
	}
	if cmd.IsSet("height") {
		cfg.Height = cmd.Int("height")
	}
	if cmd.IsSet("naming") {
		cfg.Naming = cmd.String("naming")
	}
	if cmd.IsSet("manifest") {
		cfg.Manifest = cmd.Bool("manifest")
	}
	if cmd.IsSet("archive") {
		cfg.Archive = cmd.Bool("archive")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
}

// setup builds the logger and publishers shared by extract and batch.
func setup(ctx context.Context, cfg config.Config) (*zap.Logger, publish.Publisher, error) {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	pub, err := publish.FromConfig(ctx, cfg.Publish)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	return log, pub, nil
}

func (r *runner) extract(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("source") {
		cfg.Source = cmd.String("source")
	}
	if src := cmd.Args().First(); src != "" {
		cfg.Source = src
	}
	if cmd.IsSet("output") {
		cfg.OutputDir = cmd.String("output")
	}

	job, err := cfg.Job()
	if err != nil {
		return err
	}
	log, pub, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	n, err := r.run(ctx, log, job, pub)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.stdout, "%d frames written to %s\n", n, job.OutputDir)
	return nil
}

func (r *runner) batch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, pub, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	return r.processDirectory(ctx, log, pub, cfg, cmd.String("video-dir"), cmd.String("frames-dir"), cmd.Bool("recursive"))
}

// processDirectory extracts every video under videoDir into its own folder
// below framesDir. It stops at the first failing video.
func (r *runner) processDirectory(ctx context.Context, log *zap.Logger, pub publish.Publisher, cfg config.Config, videoDir, framesDir string, recursive bool) error {
	videos, err := media.ListVideos(videoDir, recursive)
	if err != nil {
		return fmt.Errorf("read video directory: %w", err)
	}
	if len(videos) == 0 {
		return fmt.Errorf("no video files found in %s", videoDir)
	}

	var total int
	for _, path := range videos {
		c := cfg
		c.Source = path
		c.OutputDir = filepath.Join(framesDir, videoStem(videoDir, path))
		job, err := c.Job()
		if err != nil {
			return err
		}

		log.Info("extracting frames", zap.String("source", path), zap.String("output_dir", job.OutputDir))
		n, err := r.run(ctx, log, job, pub)
		if err != nil {
			return fmt.Errorf("extract frames for %s: %w", filepath.Base(path), err)
		}
		total += n
	}
	fmt.Fprintf(r.stdout, "%d frames written for %d videos to %s\n", total, len(videos), framesDir)
	return nil
}

// videoStem names the output folder of a video after its path relative to
// the scanned directory, without extension.
func videoStem(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// run drives one job and forwards every written frame to pub.
func (r *runner) run(ctx context.Context, log *zap.Logger, job extract.Job, pub publish.Publisher) (int, error) {
	seq, err := extract.New(r.decoder, log).Start(ctx, job)
	if err != nil {
		return 0, err
	}
	defer seq.Close()

	jobID := uuid.NewString()
	var n int
	for seq.Next(ctx) {
		n++
		if pub == nil {
			continue
		}
		rec := seq.Record()
		if err := pub.Publish(ctx, publish.Frame{Record: rec, JobID: jobID, Source: job.SourcePath}); err != nil {
			return n, fmt.Errorf("publish frame %d: %w", rec.Index, err)
		}
	}
	return n, seq.Err()
}

type probeResult struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FrameRate       float64 `json:"frame_rate"`
	Codec           string  `json:"codec"`
}

func (r *runner) probe(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("probe needs a video file", exitConfig)
	}
	src, err := r.decoder.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", extract.ErrSourceUnreadable, path, err)
	}
	info := src.Info()
	_ = src.Close()

	enc := json.NewEncoder(r.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(probeResult{
		Path:            path,
		DurationSeconds: info.Duration.Seconds(),
		Width:           info.Width,
		Height:          info.Height,
		FrameRate:       info.FrameRate,
		Codec:           info.Codec,
	})
}
