package publish

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framegen/internal/config"
	"framegen/internal/extract"
)

func frameOnDisk(t *testing.T) Frame {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame_00002.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))
	return Frame{
		Record: extract.Record{Index: 2, Timestamp: 1500 * time.Millisecond, Path: path},
		JobID:  "job_1",
		Source: "/videos/clip.mp4",
	}
}

func TestHTTPPublisherUpload(t *testing.T) {
	var got struct {
		auth, index, ts, job, source, file string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload_image", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		got.auth = r.Header.Get("Authorization")
		got.index = r.FormValue("frame_index")
		got.ts = r.FormValue("timestamp")
		got.job = r.FormValue("job_id")
		got.source = r.FormValue("video_path")
		f, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		got.file = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"img_9"}`))
	}))
	defer srv.Close()

	pub := NewHTTPPublisher(srv.URL+"/", "secret", time.Second)
	id, err := pub.UploadFrame(context.Background(), frameOnDisk(t))
	require.NoError(t, err)
	assert.Equal(t, "img_9", id)
	assert.Equal(t, "Bearer secret", got.auth)
	assert.Equal(t, "2", got.index)
	assert.Equal(t, "1.5", got.ts)
	assert.Equal(t, "job_1", got.job)
	assert.Equal(t, "/videos/clip.mp4", got.source)
	assert.Equal(t, "png-bytes", got.file)
}

func TestHTTPPublisherErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewHTTPPublisher(srv.URL, "", time.Second).Publish(context.Background(), frameOnDisk(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestHTTPPublisherEmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewHTTPPublisher(srv.URL, "", time.Second).Publish(context.Background(), frameOnDisk(t))
	assert.Error(t, err)
}

type recorder struct {
	frames []Frame
	err    error
}

func (r *recorder) Publish(_ context.Context, f Frame) error {
	r.frames = append(r.frames, f)
	return r.err
}

func TestMultiStopsAtFirstError(t *testing.T) {
	first := &recorder{err: errors.New("down")}
	second := &recorder{}

	err := Multi{first, second}.Publish(context.Background(), Frame{})
	require.Error(t, err)
	assert.Len(t, first.frames, 1)
	assert.Empty(t, second.frames)
}

func TestCountingStats(t *testing.T) {
	rec := &recorder{}
	c := NewCounting(rec)
	require.NoError(t, c.Publish(context.Background(), Frame{}))
	require.NoError(t, c.Publish(context.Background(), Frame{}))
	rec.err = errors.New("down")
	require.Error(t, c.Publish(context.Background(), Frame{}))

	st := c.Stats()
	assert.Equal(t, 2, st.Published)
	assert.Equal(t, 1, st.Failed)
	require.NotNil(t, st.LastSuccess)
	require.NotNil(t, st.LastError)
	assert.Equal(t, "down", *st.LastError)
}

func TestObjectKey(t *testing.T) {
	f := Frame{Record: extract.Record{Path: "/out/frame_00001.jpg"}, Source: "/videos/clip.mp4"}
	assert.Equal(t, "frames/clip/frame_00001.jpg", ObjectKey("frames", f))

	f.JobID = "job_7"
	assert.Equal(t, "job_7/frame_00001.jpg", ObjectKey("", f))
}

func TestFromConfig(t *testing.T) {
	pub, err := FromConfig(context.Background(), config.Publish{})
	require.NoError(t, err)
	assert.Nil(t, pub)

	pub, err = FromConfig(context.Background(), config.Publish{HTTP: config.HTTPPublish{URL: "http://localhost:1"}})
	require.NoError(t, err)
	require.IsType(t, Multi{}, pub)
	assert.Len(t, pub.(Multi), 1)

	_, err = FromConfig(context.Background(), config.Publish{S3: config.ObjectPublish{Bucket: "frames"}})
	assert.ErrorIs(t, err, config.ErrInvalid)
}
