package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"framegen/internal/config"
	"framegen/internal/media"
	"framegen/internal/media/mediatest"
	"framegen/internal/publish"
)

const clip = "/videos/clip.mp4"

type testEnv struct {
	server  *Server
	http    *httptest.Server
	decoder *mediatest.Decoder
}

func newTestEnv(t *testing.T, pub publish.Publisher) *testEnv {
	t.Helper()
	dec := mediatest.NewDecoder()
	dec.Add(clip, media.Info{Duration: 5 * time.Second})

	s := NewServer(config.ServerConfig{FramesRoot: t.TempDir()}, config.Default(), dec, pub, zap.NewNop())
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown()
	})
	return &testEnv{server: s, http: ts, decoder: dec}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			r = strings.NewReader(s)
		} else {
			buf, err := json.Marshal(body)
			require.NoError(t, err)
			r = bytes.NewReader(buf)
		}
	}
	req, err := http.NewRequest(method, e.http.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (e *testEnv) startJob(t *testing.T, req CreateJobRequest) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/jobs", req)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var out StartJobResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.JobID)
	return out.JobID
}

func (e *testEnv) job(t *testing.T, id string) Job {
	t.Helper()
	resp := e.do(t, http.MethodGet, "/jobs/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var job Job
	decode(t, resp, &job)
	return job
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out HealthResponse
	decode(t, resp, &out)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, Version, out.Version)
}

func TestJobRunsToCompletion(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.startJob(t, CreateJobRequest{Source: clip})
	env.server.Wait()

	job := env.job(t, id)
	assert.Equal(t, StatusDone, job.Status)
	assert.Equal(t, 5, job.FramesExtracted)
	assert.Equal(t, 5, job.FramesPlanned)
	assert.Equal(t, 1.0, job.Progress)
	assert.Equal(t, 5.0, job.DurationSeconds)
	assert.Nil(t, job.LastError)

	resp := env.do(t, http.MethodGet, "/jobs/"+id+"/frames", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var frames []Frame
	decode(t, resp, &frames)
	require.Len(t, frames, 5)
	for i, f := range frames {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, float64(i), f.Timestamp)
		_, err := os.Stat(filepath.Join(job.OutputDir, f.File))
		assert.NoError(t, err)
	}

	resp = env.do(t, http.MethodGet, frames[2].URL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp = env.do(t, http.MethodGet, "/jobs/"+id+"/frames/9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJobTimestampsAndOverrides(t *testing.T) {
	env := newTestEnv(t, nil)
	format := "jpg"
	naming := "timestamp"
	manifest := true
	id := env.startJob(t, CreateJobRequest{
		Source:     clip,
		Timestamps: []float64{4, 0.5},
		Format:     &format,
		Naming:     &naming,
		Manifest:   &manifest,
	})
	env.server.Wait()

	job := env.job(t, id)
	require.Equal(t, StatusDone, job.Status)

	resp := env.do(t, http.MethodGet, "/jobs/"+id+"/frames", nil)
	var frames []Frame
	decode(t, resp, &frames)
	require.Len(t, frames, 2)
	assert.Equal(t, "frame_0000000500ms.jpg", frames[0].File)
	assert.Equal(t, "frame_0000004000ms.jpg", frames[1].File)

	_, err := os.Stat(filepath.Join(job.OutputDir, "manifest.json"))
	assert.NoError(t, err)
}

func TestCreateJobValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/jobs", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/jobs", CreateJobRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/jobs", `{"source": "/videos/clip.mp4", "fps": 2}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	format := "webp"
	resp = env.do(t, http.MethodPost, "/jobs", CreateJobRequest{Source: clip, Format: &format})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out ErrorResponse
	decode(t, resp, &out)
	assert.Contains(t, out.Error, "webp")

	resp = env.do(t, http.MethodGet, "/jobs", nil)
	var jobs []Job
	decode(t, resp, &jobs)
	assert.Empty(t, jobs)
}

func TestJobFailures(t *testing.T) {
	env := newTestEnv(t, nil)
	missing := env.startJob(t, CreateJobRequest{Source: "/videos/missing.mp4"})
	beyond := env.startJob(t, CreateJobRequest{Source: clip, Timestamps: []float64{1, 9}})
	env.server.Wait()

	job := env.job(t, missing)
	assert.Equal(t, StatusFailed, job.Status)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "source unreadable")

	job = env.job(t, beyond)
	assert.Equal(t, StatusFailed, job.Status)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "invalid selection")
	assert.Zero(t, job.FramesExtracted)
}

type blockingPublisher struct {
	once    sync.Once
	started chan struct{}
}

func (p *blockingPublisher) Publish(ctx context.Context, _ publish.Frame) error {
	p.once.Do(func() { close(p.started) })
	<-ctx.Done()
	return ctx.Err()
}

func TestCancelJob(t *testing.T) {
	pub := &blockingPublisher{started: make(chan struct{})}
	env := newTestEnv(t, pub)
	id := env.startJob(t, CreateJobRequest{Source: clip})

	select {
	case <-pub.started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never reached the publisher")
	}

	resp := env.do(t, http.MethodPost, "/jobs/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env.server.Wait()

	job := env.job(t, id)
	assert.Equal(t, StatusCancelled, job.Status)
	assert.Equal(t, 1, job.FramesExtracted)
	assert.True(t, env.decoder.Opened()[0].Closed())

	resp = env.do(t, http.MethodPost, "/jobs/"+id+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/jobs/job_unknown/cancel", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEndJobKeepsCancellation(t *testing.T) {
	env := newTestEnv(t, nil)
	s := env.server
	s.mu.Lock()
	s.jobs["job_cancelled"] = &Job{ID: "job_cancelled", Status: StatusCancelled, FramesExtracted: 5}
	s.jobs["job_running"] = &Job{ID: "job_running", Status: StatusRunning, FramesExtracted: 5}
	s.mu.Unlock()

	// The run finished cleanly after the cancel request was accepted.
	s.endJob(context.Background(), "job_cancelled", nil, zap.NewNop())
	s.endJob(context.Background(), "job_running", nil, zap.NewNop())

	cancelled := env.job(t, "job_cancelled")
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.LastError)
	assert.Equal(t, "cancelled", *cancelled.LastError)

	done := env.job(t, "job_running")
	assert.Equal(t, StatusDone, done.Status)
	assert.Nil(t, done.LastError)
}

type countingPublisher struct {
	mu     sync.Mutex
	frames []publish.Frame
}

func (p *countingPublisher) Publish(_ context.Context, f publish.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, f)
	return nil
}

func TestPublishing(t *testing.T) {
	pub := &countingPublisher{}
	env := newTestEnv(t, pub)

	resp := env.do(t, http.MethodGet, "/publish/status", nil)
	var st PublishStatus
	decode(t, resp, &st)
	assert.True(t, st.Enabled)
	assert.Zero(t, st.Published)

	id := env.startJob(t, CreateJobRequest{Source: clip})
	env.server.Wait()

	resp = env.do(t, http.MethodGet, "/publish/status", nil)
	decode(t, resp, &st)
	assert.Equal(t, 5, st.Published)
	assert.NotNil(t, st.LastSuccess)

	require.Len(t, pub.frames, 5)
	assert.Equal(t, id, pub.frames[0].JobID)
	assert.Equal(t, clip, pub.frames[0].Source)
}

func TestPublishStatusDisabled(t *testing.T) {
	env := newTestEnv(t, nil)
	resp := env.do(t, http.MethodGet, "/publish/status", nil)
	var st PublishStatus
	decode(t, resp, &st)
	assert.False(t, st.Enabled)
}

func TestConfigGetPut(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/config", nil)
	var cfg Config
	decode(t, resp, &cfg)
	assert.Equal(t, 1.0, cfg.Interval)
	assert.Equal(t, "png", cfg.Format)

	resp = env.do(t, http.MethodPut, "/config", map[string]interface{}{
		"interval":   2.5,
		"format":     "jpg",
		"frame_size": []int{32, 32},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &cfg)
	assert.Equal(t, 2.5, cfg.Interval)
	assert.Equal(t, [2]int{32, 32}, cfg.FrameSize)

	resp = env.do(t, http.MethodPut, "/config", map[string]interface{}{"format": "webp"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/config", nil)
	decode(t, resp, &cfg)
	assert.Equal(t, "jpg", cfg.Format, "rejected update leaves defaults untouched")

	id := env.startJob(t, CreateJobRequest{Source: clip})
	env.server.Wait()
	resp = env.do(t, http.MethodGet, "/jobs/"+id+"/frames", nil)
	var frames []Frame
	decode(t, resp, &frames)
	require.Len(t, frames, 2)
	assert.True(t, strings.HasSuffix(frames[0].File, ".jpg"))
}

func TestProbe(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodPost, "/probe", ProbeRequest{Path: clip})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out ProbeResponse
	decode(t, resp, &out)
	assert.Equal(t, 5.0, out.DurationSeconds)
	assert.Equal(t, 64, out.Width)
	assert.True(t, env.decoder.Opened()[0].Closed())

	resp = env.do(t, http.MethodPost, "/probe", ProbeRequest{Path: "/videos/missing.mp4"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/probe", ProbeRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFolders(t *testing.T) {
	env := newTestEnv(t, nil)
	dir := t.TempDir()
	video := filepath.Join(dir, "a.mp4")
	require.NoError(t, os.WriteFile(video, nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	env.decoder.Add(video, media.Info{Duration: 2 * time.Second})

	resp := env.do(t, http.MethodPost, "/folders", AddFolderRequest{Path: dir})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var out AddFolderResponse
	decode(t, resp, &out)
	require.Len(t, out.JobIDs, 1)
	env.server.Wait()

	job := env.job(t, out.JobIDs[0])
	assert.Equal(t, video, job.Source)
	assert.Equal(t, StatusDone, job.Status)
	assert.Equal(t, 2, job.FramesExtracted)

	resp = env.do(t, http.MethodPost, "/folders", AddFolderRequest{Path: t.TempDir()})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.startJob(t, CreateJobRequest{Source: clip})
	env.server.Wait()

	resp := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "framegen_frames_extracted_total")
	assert.Contains(t, string(body), "framegen_jobs_total")
}

func TestStatelessShutdownRemovesFrames(t *testing.T) {
	dec := mediatest.NewDecoder()
	dec.Add(clip, media.Info{Duration: time.Second})
	s := NewServer(config.ServerConfig{Stateless: true}, config.Default(), dec, nil, nil)
	root := s.framesRoot
	require.NotEqual(t, "frames", root)

	_, err := s.startJob(CreateJobRequest{Source: clip})
	require.NoError(t, err)
	s.Wait()
	_, err = os.Stat(root)
	require.NoError(t, err)

	s.Shutdown()
	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}
