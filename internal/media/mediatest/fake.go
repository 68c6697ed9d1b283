// Package mediatest provides an in-memory media decoder for tests.
package mediatest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"framegen/internal/media"
)

// Decoder serves synthetic sources keyed by path.
type Decoder struct {
	mu      sync.Mutex
	media   map[string]media.Info
	failAt  map[string]time.Duration
	opened  []*Source
	OpenErr error
}

func NewDecoder() *Decoder {
	return &Decoder{
		media:  make(map[string]media.Info),
		failAt: make(map[string]time.Duration),
	}
}

// Add registers a source at path.
func (d *Decoder) Add(path string, info media.Info) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if info.Width == 0 {
		info.Width = 64
	}
	if info.Height == 0 {
		info.Height = 48
	}
	if info.FrameRate == 0 {
		info.FrameRate = 25
	}
	d.media[path] = info
}

// FailAt makes decoding fail for any frame at or after ts.
func (d *Decoder) FailAt(path string, ts time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAt[path] = ts
}

func (d *Decoder) Open(ctx context.Context, path string) (media.Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	info, ok := d.media[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	failAt, fails := d.failAt[path]
	src := &Source{info: info, failAt: failAt, fails: fails}
	d.opened = append(d.opened, src)
	return src, nil
}

// Opened returns every source handed out so far.
func (d *Decoder) Opened() []*Source {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Source(nil), d.opened...)
}

// Source renders a solid frame whose red channel encodes the timestamp.
type Source struct {
	info   media.Info
	failAt time.Duration
	fails  bool

	mu       sync.Mutex
	closed   bool
	requests []time.Duration
}

func (s *Source) Info() media.Info {
	return s.info
}

func (s *Source) FrameAt(ctx context.Context, ts time.Duration) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, media.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ts < 0 || ts > s.info.Duration {
		return nil, fmt.Errorf("timestamp %s outside media", ts)
	}
	if s.fails && ts >= s.failAt {
		return nil, errors.New("corrupt packet")
	}
	s.requests = append(s.requests, ts)
	shade := uint8(ts.Milliseconds() / 100 % 256)
	return imaging.New(s.info.Width, s.info.Height, color.NRGBA{R: shade, G: 80, B: 160, A: 255}), nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Requests returns the timestamps decoded so far.
func (s *Source) Requests() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.requests...)
}
