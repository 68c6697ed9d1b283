package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"framegen/internal/media"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(media.NewFFmpeg(), os.Stdout)
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "framegen:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// newApp builds the command tree. Exit codes are decided by main, so the
// commands only return errors.
func newApp(decoder media.Decoder, stdout io.Writer) *cli.Command {
	r := &runner{decoder: decoder, stdout: stdout}
	return &cli.Command{
		Name:           "framegen",
		Usage:          "Extract still frames from video files",
		Version:        version,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Extract frames from one video",
				ArgsUsage: "[source]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"i"},
						Usage:   "Video file to extract frames from",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory where extracted frames will be written",
						Value:   "frames",
					},
				}, jobFlags()...),
				Action: r.extract,
			},
			{
				Name:  "batch",
				Usage: "Extract frames for every video in a directory",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "video-dir",
						Aliases: []string{"i"},
						Usage:   "Directory containing source videos",
						Value:   "videos",
					},
					&cli.StringFlag{
						Name:    "frames-dir",
						Aliases: []string{"o"},
						Usage:   "Directory where a folder of frames is written per video",
						Value:   "frames",
					},
					&cli.BoolFlag{
						Name:  "recursive",
						Usage: "Descend into subdirectories",
					},
				}, jobFlags()...),
				Action: r.batch,
			},
			{
				Name:      "probe",
				Usage:     "Print duration, size and codec of a video as JSON",
				ArgsUsage: "<file>",
				Action:    r.probe,
			},
		},
	}
}

// jobFlags are shared by extract and batch. Only flags set on the command
// line override the config file and environment.
func jobFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML or JSON config file",
		},
		&cli.Float64Flag{
			Name:    "interval",
			Aliases: []string{"r"},
			Usage:   "Seconds between sampled frames",
			Value:   1.0,
		},
		&cli.Float64SliceFlag{
			Name:  "at",
			Usage: "Extract a frame at this many seconds (repeatable); replaces --interval",
		},
		&cli.BoolFlag{
			Name:  "include-end",
			Usage: "Also sample the frame at the exact end of the video",
		},
		&cli.IntFlag{
			Name:  "max-frames",
			Usage: "Stop after this many frames (0 = no limit)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Image format: png, jpg, gif, bmp or tiff",
			Value:   "png",
		},
		&cli.IntFlag{
			Name:  "quality",
			Usage: "JPEG quality between 1 and 100",
			Value: 90,
		},
		&cli.IntFlag{
			Name:  "width",
			Usage: "Output frame width in pixels (0 keeps the source size)",
		},
		&cli.IntFlag{
			Name:  "height",
			Usage: "Output frame height in pixels (0 keeps the source size)",
		},
		&cli.StringFlag{
			Name:  "naming",
			Usage: "File naming: index or timestamp",
			Value: "index",
		},
		&cli.BoolFlag{
			Name:  "manifest",
			Usage: "Write manifest.json next to the frames",
		},
		&cli.BoolFlag{
			Name:  "archive",
			Usage: "Bundle the frames into frames.zip",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
			Value: "info",
		},
	}
}
