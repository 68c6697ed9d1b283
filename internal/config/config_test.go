package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framegen/internal/output"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "job.yaml", `
source: clip.mp4
output_dir: out
interval: 0.5
format: jpg
quality: 75
width: 320
naming: timestamp
manifest: true
publish:
  http:
    url: http://localhost:8000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", cfg.Source)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 0.5, cfg.Interval)
	assert.Equal(t, "jpg", cfg.Format)
	assert.Equal(t, 75, cfg.Quality)
	assert.Equal(t, 320, cfg.Width)
	assert.True(t, cfg.Manifest)
	assert.Equal(t, "http://localhost:8000", cfg.Publish.HTTP.URL)
	assert.Equal(t, 30, cfg.Publish.HTTP.TimeoutSeconds, "defaults survive the file")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "job.json", `{"source": "clip.mp4", "timestamps": [1.5, 0.25], "include_end": true}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 0.25}, cfg.Timestamps)
	assert.True(t, cfg.IncludeEnd)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeFile(t, "job.yaml", "sauce: clip.mp4\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeFile(t, "job.json", `{"sauce": "clip.mp4"}`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeFile(t, "job.toml", "source = 'x'"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeFile(t, "job.yaml", "interval: [not, a, number]\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "job.yaml", "source: clip.mp4\ninterval: 2\n")
	t.Setenv("FRAMEGEN_INTERVAL", "0.25")
	t.Setenv("FRAMEGEN_TIMESTAMPS", "1,2.5")
	t.Setenv("FRAMEGEN_PUBLISH_S3_BUCKET", "frames")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", cfg.Source)
	assert.Equal(t, 0.25, cfg.Interval)
	assert.Equal(t, []float64{1, 2.5}, cfg.Timestamps)
	assert.Equal(t, "frames", cfg.Publish.S3.Bucket)
}

func TestLoadEnvironmentMalformed(t *testing.T) {
	t.Setenv("FRAMEGEN_MAX_FRAMES", "many")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestJob(t *testing.T) {
	cfg := Default()
	cfg.Source = "clip.mp4"
	cfg.Format = "JPG"
	cfg.Interval = 0.5

	job, err := cfg.Job()
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", job.SourcePath)
	assert.Equal(t, output.JPEG, job.Format)
	assert.Equal(t, output.ByIndex, job.Naming)
	assert.Equal(t, 500*time.Millisecond, job.Selection.Interval)
	assert.Empty(t, job.Selection.Timestamps)
}

func TestJobTimestampsTakePrecedence(t *testing.T) {
	cfg := Default()
	cfg.Source = "clip.mp4"
	cfg.Timestamps = []float64{0.1, 3}

	job, err := cfg.Job()
	require.NoError(t, err)
	assert.Zero(t, job.Selection.Interval)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 3 * time.Second}, job.Selection.Timestamps)
}

func TestJobInvalid(t *testing.T) {
	broken := []func(c *Config){
		func(c *Config) { c.Source = "" },
		func(c *Config) { c.OutputDir = "" },
		func(c *Config) { c.Format = "webp" },
		func(c *Config) { c.Naming = "hash" },
		func(c *Config) { c.Interval = 0 },
		func(c *Config) { c.Interval = -1 },
		func(c *Config) { c.Timestamps = []float64{-2} },
		func(c *Config) { c.Timestamps = []float64{1, math.NaN()} },
		func(c *Config) { c.Timestamps = []float64{math.Inf(1)} },
		func(c *Config) { c.Interval = math.Inf(1) },
		func(c *Config) { c.Timestamps = []float64{-1e300} },
		func(c *Config) { c.Quality = 500 },
		func(c *Config) { c.Height = -3 },
	}
	for i, mutate := range broken {
		cfg := Default()
		cfg.Source = "clip.mp4"
		mutate(&cfg)
		_, err := cfg.Job()
		assert.ErrorIs(t, err, ErrInvalid, "case %d", i)
	}
}

func TestLoadServer(t *testing.T) {
	t.Setenv("FRAMES_ROOT", "/var/frames")
	t.Setenv("FRAMEGEN_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "/var/frames", cfg.FramesRoot)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Stateless)
}
