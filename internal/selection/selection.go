package selection

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	// ErrEmpty is returned when a policy selects no frames inside the media.
	ErrEmpty = errors.New("selection yields no frames")
	// ErrOutOfRange is returned when an explicit timestamp lies past the end of the media.
	ErrOutOfRange = errors.New("timestamp beyond media duration")
)

// MinInterval is the smallest sampling interval accepted.
const MinInterval = time.Millisecond

// Policy decides which timestamps of a video are extracted. Exactly one of
// Interval or Timestamps is used.
type Policy struct {
	Interval   time.Duration   `json:"interval"`
	Timestamps []time.Duration `json:"timestamps,omitempty"`
	// IncludeEnd lets interval sampling emit a frame at exactly the media duration.
	IncludeEnd bool `json:"include_end"`
	// MaxFrames caps the number of planned frames; zero means no cap.
	MaxFrames int `json:"max_frames"`
}

// Every returns an interval policy.
func Every(interval time.Duration) Policy {
	return Policy{Interval: interval}
}

// At returns an explicit timestamp policy.
func At(ts ...time.Duration) Policy {
	return Policy{Timestamps: ts}
}

func (p Policy) Validate() error {
	switch {
	case p.Interval > 0 && len(p.Timestamps) > 0:
		return fmt.Errorf("interval and timestamps are mutually exclusive")
	case p.Interval == 0 && len(p.Timestamps) == 0:
		return fmt.Errorf("either an interval or timestamps are required")
	case p.Interval < 0:
		return fmt.Errorf("interval must be positive, got %s", p.Interval)
	case p.Interval > 0 && p.Interval < MinInterval:
		return fmt.Errorf("interval must be at least %s, got %s", MinInterval, p.Interval)
	case p.MaxFrames < 0:
		return fmt.Errorf("max frames must not be negative, got %d", p.MaxFrames)
	}
	for _, ts := range p.Timestamps {
		if ts < 0 {
			return fmt.Errorf("timestamp must not be negative, got %s", ts)
		}
	}
	return nil
}

// Plan returns the strictly increasing timestamps to extract from media of
// the given duration. Every returned timestamp lies in [0, duration].
func Plan(p Policy, duration time.Duration) ([]time.Duration, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if duration < 0 {
		return nil, fmt.Errorf("negative media duration %s", duration)
	}

	var plan []time.Duration
	if p.Interval > 0 {
		plan = planInterval(p, duration)
	} else {
		var err error
		plan, err = planTimestamps(p.Timestamps, duration)
		if err != nil {
			return nil, err
		}
	}

	if p.MaxFrames > 0 && len(plan) > p.MaxFrames {
		plan = plan[:p.MaxFrames]
	}
	if len(plan) == 0 {
		return nil, fmt.Errorf("%w: duration %s, interval %s", ErrEmpty, duration, p.Interval)
	}
	return plan, nil
}

func planInterval(p Policy, duration time.Duration) []time.Duration {
	var plan []time.Duration
	for ts := time.Duration(0); ts < duration || (ts == duration && p.IncludeEnd); ts += p.Interval {
		plan = append(plan, ts)
		if p.MaxFrames > 0 && len(plan) == p.MaxFrames {
			break
		}
		// ts+Interval would pass the end; stop before it can overflow.
		if duration-ts < p.Interval {
			break
		}
	}
	return plan
}

// planTimestamps truncates to millisecond precision so that two requests
// never map to the same timestamp-named file.
func planTimestamps(in []time.Duration, duration time.Duration) ([]time.Duration, error) {
	ts := make([]time.Duration, 0, len(in))
	for _, t := range in {
		t = t.Truncate(time.Millisecond)
		if t > duration {
			return nil, fmt.Errorf("%w: %s > %s", ErrOutOfRange, t, duration)
		}
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	out := make([]time.Duration, 0, len(ts))
	for _, t := range ts {
		if len(out) > 0 && out[len(out)-1] == t {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// maxMicros is the largest whole number of microseconds a time.Duration can hold.
const maxMicros = math.MaxInt64 / int64(time.Microsecond)

// Seconds converts a floating point number of seconds to a duration,
// rounded to the nearest microsecond. Values past the range of
// time.Duration saturate, so they still fail range checks downstream.
// NaN and infinities are rejected.
func Seconds(s float64) (time.Duration, error) {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, fmt.Errorf("%v is not a finite number of seconds", s)
	}
	us := math.Round(s * 1e6)
	switch {
	case us >= float64(maxMicros):
		return math.MaxInt64, nil
	case us <= -float64(maxMicros):
		return math.MinInt64, nil
	}
	return time.Duration(us) * time.Microsecond, nil
}
