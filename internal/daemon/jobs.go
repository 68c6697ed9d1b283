package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"framegen/internal/config"
	"framegen/internal/extract"
	"framegen/internal/metrics"
	"framegen/internal/publish"
)

// jobConfig merges a request over the server defaults.
func (s *Server) jobConfig(req CreateJobRequest, jobID string) config.Config {
	s.mu.RLock()
	cfg := s.defaults
	s.mu.RUnlock()

	cfg.Source = req.Source
	cfg.OutputDir = filepath.Join(s.framesRoot, jobID)
	if req.Interval != nil {
		cfg.Interval = *req.Interval
	}
	cfg.Timestamps = req.Timestamps
	if req.IncludeEnd != nil {
		cfg.IncludeEnd = *req.IncludeEnd
	}
	if req.MaxFrames != nil {
		cfg.MaxFrames = *req.MaxFrames
	}
	if req.Format != nil {
		cfg.Format = *req.Format
	}
	if req.Quality != nil {
		cfg.Quality = *req.Quality
	}
	if req.FrameSize != nil {
		cfg.Width, cfg.Height = req.FrameSize[0], req.FrameSize[1]
	}
	if req.Naming != nil {
		cfg.Naming = *req.Naming
	}
	if req.Manifest != nil {
		cfg.Manifest = *req.Manifest
	}
	if req.Archive != nil {
		cfg.Archive = *req.Archive
	}
	return cfg
}

// startJob validates the request and schedules the extraction in the background.
func (s *Server) startJob(req CreateJobRequest) (*Job, error) {
	jobID := newID("job_")
	extractJob, err := s.jobConfig(req, jobID).Job()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &Job{
		ID:        jobID,
		Source:    extractJob.SourcePath,
		OutputDir: extractJob.OutputDir,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.jobs[jobID] = job
	s.jobCancel[jobID] = cancel
	s.running.Add(1)
	s.mu.Unlock()

	copyJob := *job
	go s.runJob(ctx, jobID, extractJob)
	return &copyJob, nil
}

// cancelJob stops a queued or running job.
func (s *Server) cancelJob(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return errNotFound
	}
	cancel, active := s.jobCancel[jobID]
	if !active || (job.Status != StatusQueued && job.Status != StatusRunning) {
		return errInactive
	}
	cancel()
	delete(s.jobCancel, jobID)
	job.Status = StatusCancelled
	job.UpdatedAt = time.Now().UTC()
	msg := "cancelled"
	job.LastError = &msg
	return nil
}

// runJob drives one extraction sequence to completion, failure or cancellation.
func (s *Server) runJob(ctx context.Context, jobID string, extractJob extract.Job) {
	start := time.Now()
	log := s.logger.With(zap.String("job_id", jobID), zap.String("source", extractJob.SourcePath))
	metrics.ActiveJobs.Inc()
	defer func() {
		metrics.ActiveJobs.Dec()
		metrics.JobDuration.Observe(time.Since(start).Seconds())
		s.mu.Lock()
		if cancel, ok := s.jobCancel[jobID]; ok {
			cancel()
			delete(s.jobCancel, jobID)
		}
		s.mu.Unlock()
		s.running.Done()
	}()

	seq, err := s.orchestrator.Start(ctx, extractJob)
	if err != nil {
		s.endJob(ctx, jobID, err, log)
		return
	}
	defer seq.Close()

	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok && job.Status == StatusQueued {
		job.Status = StatusRunning
		job.FramesPlanned = seq.Planned()
		job.DurationSeconds = seq.Info().Duration.Seconds()
		job.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()

	for seq.Next(ctx) {
		rec := seq.Record()
		metrics.FramesExtractedTotal.Inc()
		s.recordFrame(jobID, rec, seq.Planned())

		if s.publisher == nil {
			continue
		}
		err := s.publisher.Publish(ctx, publish.Frame{Record: rec, JobID: jobID, Source: extractJob.SourcePath})
		if err != nil {
			metrics.FramesPublishedTotal.WithLabelValues("error").Inc()
			s.endJob(ctx, jobID, fmt.Errorf("publish frame %d: %w", rec.Index, err), log)
			return
		}
		metrics.FramesPublishedTotal.WithLabelValues("ok").Inc()
	}
	s.endJob(ctx, jobID, seq.Err(), log)
}

func (s *Server) recordFrame(jobID string, rec extract.Record, planned int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	file := filepath.Base(rec.Path)
	job.frames = append(job.frames, Frame{
		Index:     rec.Index,
		Timestamp: rec.Seconds(),
		File:      file,
		URL:       fmt.Sprintf("/jobs/%s/frames/%d", jobID, rec.Index),
	})
	job.FramesExtracted = len(job.frames)
	if planned > 0 {
		job.Progress = float64(job.FramesExtracted) / float64(planned)
	}
	job.UpdatedAt = time.Now().UTC()
}

// endJob records the terminal state of a job. A nil err means success,
// unless the job was cancelled first: a cancelled job stays cancelled even
// when its last frame finished before the cancellation was observed.
func (s *Server) endJob(ctx context.Context, jobID string, err error, log *zap.Logger) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.UpdatedAt = now

	switch {
	case job.Status == StatusCancelled || ctx.Err() != nil || errors.Is(err, context.Canceled):
		job.Status = StatusCancelled
		msg := "cancelled"
		job.LastError = &msg
		log.Info("job cancelled", zap.Int("frames", job.FramesExtracted))
	case err == nil:
		job.Status = StatusDone
		job.Progress = 1
		job.LastError = nil
		log.Info("job completed", zap.Int("frames", job.FramesExtracted))
	default:
		job.Status = StatusFailed
		msg := err.Error()
		job.LastError = &msg
		log.Error("job failed", zap.Int("frames", job.FramesExtracted), zap.Error(err))
	}
	metrics.JobsTotal.WithLabelValues(job.Status).Inc()
}

func (s *Server) jobFrames(jobID string) ([]Frame, *Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, nil, errNotFound
	}
	frames := append([]Frame(nil), job.frames...)
	copyJob := *job
	return frames, &copyJob, nil
}
