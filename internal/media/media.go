package media

import (
	"context"
	"image"
	"time"
)

// Info describes the video stream of a source.
type Info struct {
	Duration  time.Duration `json:"duration"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	FrameRate float64       `json:"frame_rate"`
	Codec     string        `json:"codec"`
}

// FrameInterval is the time covered by a single frame, or zero when the
// frame rate is unknown.
func (i Info) FrameInterval() time.Duration {
	if i.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / i.FrameRate)
}

// Decoder opens media files.
type Decoder interface {
	Open(ctx context.Context, path string) (Source, error)
}

// Source is an opened media file. It must be closed once the caller is done.
type Source interface {
	Info() Info
	// FrameAt decodes the frame displayed at ts.
	FrameAt(ctx context.Context, ts time.Duration) (image.Image, error)
	Close() error
}
