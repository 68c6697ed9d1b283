package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

func init() {
	ffmpeg.LogCompiledCommand = false
}

// ErrClosed is returned when a closed source is read.
var ErrClosed = errors.New("source closed")

// DefaultProbeTimeout bounds one ffprobe run.
const DefaultProbeTimeout = 30 * time.Second

// FFmpeg opens sources through the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	ProbeTimeout time.Duration
}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{ProbeTimeout: DefaultProbeTimeout}
}

func (d *FFmpeg) Open(ctx context.Context, path string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("source %s is a directory", path)
	}

	out, err := ffmpeg.ProbeWithTimeout(path, probeTimeout(ctx, d.ProbeTimeout), nil)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	info, err := parseProbe(out)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	return &ffmpegSource{path: path, info: info}, nil
}

type ffmpegSource struct {
	path string
	info Info

	mu     sync.Mutex
	closed bool
}

func (s *ffmpegSource) Info() Info {
	return s.info
}

func (s *ffmpegSource) FrameAt(ctx context.Context, ts time.Duration) (image.Image, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seek := seekPosition(ts, s.info)
	buf := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	// The ffmpeg process is killed when ctx is done.
	in := ffmpeg.Input(s.path, ffmpeg.KwArgs{"ss": formatSeconds(seek)})
	err := ffmpeg.OutputContext(ctx, []*ffmpeg.Stream{in}, "pipe:",
		ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "png"}).
		WithOutput(buf).
		WithErrorOutput(stderr).
		Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("decode frame at %s: %w: %s", ts, err, lastLine(stderr.String()))
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("decode frame at %s: no frame produced", ts)
	}

	img, err := imaging.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decode frame at %s into image: %w", ts, err)
	}
	return img, nil
}

func (s *ffmpegSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// probeTimeout shortens limit to the time left before the ctx deadline.
// ffprobe runs detached from ctx, so the deadline is the only way to bound it.
func probeTimeout(ctx context.Context, limit time.Duration) time.Duration {
	if limit <= 0 {
		limit = DefaultProbeTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < limit {
			// ProbeWithTimeout treats zero as no limit.
			if left <= 0 {
				left = time.Nanosecond
			}
			return left
		}
	}
	return limit
}

// seekPosition keeps requests for the very end of the stream on the last
// decodable frame; ffmpeg emits nothing when seeking to the exact duration.
func seekPosition(ts time.Duration, info Info) time.Duration {
	if info.Duration <= 0 {
		return ts
	}
	step := info.FrameInterval()
	if step <= 0 {
		step = 40 * time.Millisecond
	}
	last := info.Duration - step
	if last < 0 {
		last = 0
	}
	if ts > last {
		return last
	}
	return ts
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbe(data string) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return Info{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	for _, st := range out.Streams {
		if st.CodecType != "video" {
			continue
		}
		info := Info{
			Width:  st.Width,
			Height: st.Height,
			Codec:  st.CodecName,
		}
		info.FrameRate = parseRate(st.AvgFrameRate)
		if info.FrameRate <= 0 {
			info.FrameRate = parseRate(st.RFrameRate)
		}

		durStr := out.Format.Duration
		if durStr == "" || durStr == "N/A" {
			durStr = st.Duration
		}
		secs, err := strconv.ParseFloat(durStr, 64)
		if err != nil {
			return Info{}, fmt.Errorf("parse duration %q: %w", durStr, err)
		}
		if secs <= 0 {
			return Info{}, fmt.Errorf("media has no duration")
		}
		info.Duration = time.Duration(secs * float64(time.Second))
		return info, nil
	}
	return Info{}, fmt.Errorf("no video stream found")
}

// parseRate parses ffprobe rationals such as "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
