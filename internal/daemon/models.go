package daemon

import (
	"errors"
	"time"

	"framegen/internal/media"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Config holds the defaults applied to every new job.
type Config struct {
	Interval   float64 `json:"interval" example:"1.0"`
	IncludeEnd bool    `json:"include_end" example:"false"`
	MaxFrames  int     `json:"max_frames" example:"0"`
	Format     string  `json:"format" example:"png"`
	Quality    int     `json:"quality" example:"90"`
	FrameSize  [2]int  `json:"frame_size" swaggertype:"array,integer" example:"0,0"`
	Naming     string  `json:"naming" example:"index"`
	Manifest   bool    `json:"manifest" example:"true"`
	Archive    bool    `json:"archive" example:"false"`
	Publishing bool    `json:"publishing" example:"false"`
}

// ConfigUpdateRequest allows partial configuration updates.
type ConfigUpdateRequest struct {
	Interval   *float64 `json:"interval" example:"2.0"`
	IncludeEnd *bool    `json:"include_end" example:"true"`
	MaxFrames  *int     `json:"max_frames" example:"100"`
	Format     *string  `json:"format" example:"jpg"`
	Quality    *int     `json:"quality" example:"85"`
	FrameSize  *[2]int  `json:"frame_size" swaggertype:"array,integer" example:"640,480"`
	Naming     *string  `json:"naming" example:"timestamp"`
	Manifest   *bool    `json:"manifest" example:"true"`
	Archive    *bool    `json:"archive" example:"true"`
}

// Job tracks one extraction run.
type Job struct {
	ID              string    `json:"job_id" example:"job_abcd1234"`
	Source          string    `json:"source" example:"/videos/sample.mp4"`
	OutputDir       string    `json:"output_dir" example:"frames/job_abcd1234"`
	Status          string    `json:"status" example:"running"`
	Progress        float64   `json:"progress" example:"0.42"`
	FramesExtracted int       `json:"frames_extracted" example:"42"`
	FramesPlanned   int       `json:"frames_planned" example:"100"`
	DurationSeconds float64   `json:"duration_seconds,omitempty" example:"100"`
	LastError       *string   `json:"last_error" example:"source unreadable: open /videos/missing.mp4"`
	CreatedAt       time.Time `json:"created_at" example:"2024-01-01T12:00:00Z"`
	UpdatedAt       time.Time `json:"updated_at" example:"2024-01-01T12:05:00Z"`

	frames []Frame
}

// Frame is one extracted frame of a job.
type Frame struct {
	Index     int     `json:"index" example:"3"`
	Timestamp float64 `json:"timestamp" example:"3.0"`
	File      string  `json:"file" example:"frame_00003.png"`
	URL       string  `json:"url" example:"/jobs/job_abcd1234/frames/3"`
}

// CreateJobRequest starts a job; unset fields fall back to the server config.
type CreateJobRequest struct {
	Source     string    `json:"source" example:"/videos/sample.mp4"`
	Interval   *float64  `json:"interval" example:"0.5"`
	Timestamps []float64 `json:"timestamps" example:"1.5,3"`
	IncludeEnd *bool     `json:"include_end" example:"false"`
	MaxFrames  *int      `json:"max_frames" example:"10"`
	Format     *string   `json:"format" example:"jpg"`
	Quality    *int      `json:"quality" example:"85"`
	FrameSize  *[2]int   `json:"frame_size" swaggertype:"array,integer" example:"384,384"`
	Naming     *string   `json:"naming" example:"index"`
	Manifest   *bool     `json:"manifest" example:"true"`
	Archive    *bool     `json:"archive" example:"false"`
}

// StartJobResponse provides the started job ID.
type StartJobResponse struct {
	Status string `json:"status" example:"started"`
	JobID  string `json:"job_id" example:"job_abcd1234"`
}

// CancelJobResponse indicates a cancellation attempt.
type CancelJobResponse struct {
	Status string `json:"status" example:"cancelling"`
}

// AddFolderRequest starts a job for every video in a folder.
type AddFolderRequest struct {
	Path      string `json:"path" example:"/videos"`
	Recursive bool   `json:"recursive" example:"true"`
}

// AddFolderResponse lists the jobs started for a folder.
type AddFolderResponse struct {
	Status string   `json:"status" example:"started"`
	JobIDs []string `json:"job_ids"`
}

// ProbeRequest names a media file to inspect.
type ProbeRequest struct {
	Path string `json:"path" example:"/videos/sample.mp4"`
}

// ProbeResponse describes a media file.
type ProbeResponse struct {
	Path            string  `json:"path" example:"/videos/sample.mp4"`
	DurationSeconds float64 `json:"duration_seconds" example:"12.5"`
	Width           int     `json:"width" example:"1920"`
	Height          int     `json:"height" example:"1080"`
	FrameRate       float64 `json:"frame_rate" example:"29.97"`
	Codec           string  `json:"codec" example:"h264"`
}

func newProbeResponse(path string, info media.Info) ProbeResponse {
	return ProbeResponse{
		Path:            path,
		DurationSeconds: info.Duration.Seconds(),
		Width:           info.Width,
		Height:          info.Height,
		FrameRate:       info.FrameRate,
		Codec:           info.Codec,
	}
}

// PublishStatus reports frame forwarding activity.
type PublishStatus struct {
	Enabled     bool       `json:"enabled" example:"true"`
	Published   int        `json:"published" example:"120"`
	Failed      int        `json:"failed" example:"0"`
	LastSuccess *time.Time `json:"last_success" example:"2024-01-01T12:10:00Z"`
	LastError   *string    `json:"last_error"`
}

// ErrorResponse represents a standard error payload.
type ErrorResponse struct {
	Error string `json:"error" example:"description of the error"`
}

// HealthResponse describes the health endpoint payload.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"0.1.0"`
}

var (
	errNotFound = errors.New("not found")
	errInactive = errors.New("job is not active")
)
