package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"framegen/internal/config"
	"framegen/internal/extract"
)

// Frame is a produced frame plus the job context a publisher needs.
type Frame struct {
	extract.Record
	JobID  string
	Source string
}

// Publisher forwards frames somewhere after they have been written.
type Publisher interface {
	Publish(ctx context.Context, f Frame) error
}

// Multi publishes to every publisher in order and stops at the first error.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, f Frame) error {
	for _, p := range m {
		if err := p.Publish(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// FromConfig builds the configured publishers. It returns nil when none is
// configured.
func FromConfig(ctx context.Context, cfg config.Publish) (Publisher, error) {
	var pubs Multi
	if cfg.HTTP.URL != "" {
		timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
		pubs = append(pubs, NewHTTPPublisher(cfg.HTTP.URL, cfg.HTTP.Token, timeout))
	}
	if cfg.S3.Endpoint != "" || cfg.S3.Bucket != "" {
		if cfg.S3.Endpoint == "" || cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("%w: s3 publishing needs both endpoint and bucket", config.ErrInvalid)
		}
		obj, err := NewObjectPublisher(cfg.S3)
		if err != nil {
			return nil, err
		}
		if err := obj.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		pubs = append(pubs, obj)
	}
	if len(pubs) == 0 {
		return nil, nil
	}
	return pubs, nil
}

// Stats summarises publishing activity.
type Stats struct {
	Published   int        `json:"published"`
	Failed      int        `json:"failed"`
	LastSuccess *time.Time `json:"last_success"`
	LastError   *string    `json:"last_error"`
}

// Counting wraps a publisher and keeps Stats about it.
type Counting struct {
	next Publisher

	mu    sync.Mutex
	stats Stats
}

func NewCounting(next Publisher) *Counting {
	return &Counting{next: next}
}

func (c *Counting) Publish(ctx context.Context, f Frame) error {
	err := c.next.Publish(ctx, f)
	now := time.Now().UTC()
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.stats.Failed++
		msg := err.Error()
		c.stats.LastError = &msg
		return err
	}
	c.stats.Published++
	c.stats.LastSuccess = &now
	return nil
}

func (c *Counting) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
