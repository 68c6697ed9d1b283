package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"framegen/internal/extract"
	"framegen/internal/output"
	"framegen/internal/selection"
)

// ErrInvalid marks malformed configuration.
var ErrInvalid = errors.New("config error")

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FRAMEGEN_"

// Config holds the settings of one extraction run. Interval and timestamps
// are in seconds. When Timestamps is non-empty, Interval is ignored.
type Config struct {
	Source     string    `yaml:"source" json:"source" env:"SOURCE"`
	OutputDir  string    `yaml:"output_dir" json:"output_dir" env:"OUTPUT_DIR"`
	Interval   float64   `yaml:"interval" json:"interval" env:"INTERVAL"`
	Timestamps []float64 `yaml:"timestamps" json:"timestamps" env:"TIMESTAMPS" envSeparator:","`
	IncludeEnd bool      `yaml:"include_end" json:"include_end" env:"INCLUDE_END"`
	MaxFrames  int       `yaml:"max_frames" json:"max_frames" env:"MAX_FRAMES"`
	Format     string    `yaml:"format" json:"format" env:"FORMAT"`
	Quality    int       `yaml:"quality" json:"quality" env:"QUALITY"`
	Width      int       `yaml:"width" json:"width" env:"WIDTH"`
	Height     int       `yaml:"height" json:"height" env:"HEIGHT"`
	Naming     string    `yaml:"naming" json:"naming" env:"NAMING"`
	Manifest   bool      `yaml:"manifest" json:"manifest" env:"MANIFEST"`
	Archive    bool      `yaml:"archive" json:"archive" env:"ARCHIVE"`
	LogLevel   string    `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`

	Publish Publish `yaml:"publish" json:"publish" envPrefix:"PUBLISH_"`
}

// Publish configures where produced frames are forwarded. Empty blocks are
// disabled.
type Publish struct {
	HTTP HTTPPublish   `yaml:"http" json:"http" envPrefix:"HTTP_"`
	S3   ObjectPublish `yaml:"s3" json:"s3" envPrefix:"S3_"`
}

type HTTPPublish struct {
	URL            string `yaml:"url" json:"url" env:"URL"`
	Token          string `yaml:"token" json:"token" env:"TOKEN"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds" env:"TIMEOUT_SECONDS"`
}

type ObjectPublish struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint" env:"ENDPOINT"`
	AccessKey string `yaml:"access_key" json:"access_key" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" json:"secret_key" env:"SECRET_KEY"`
	Bucket    string `yaml:"bucket" json:"bucket" env:"BUCKET"`
	Prefix    string `yaml:"prefix" json:"prefix" env:"PREFIX"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl" env:"USE_SSL"`
}

func Default() Config {
	return Config{
		OutputDir: "frames",
		Interval:  1.0,
		Format:    string(output.PNG),
		Quality:   90,
		Naming:    string(output.ByIndex),
		LogLevel:  "info",
		Publish: Publish{
			HTTP: HTTPPublish{TimeoutSeconds: 30},
		},
	}
}

// Load returns the defaults overlaid with the file at path (if any) and
// then with FRAMEGEN_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("%w: environment: %w", ErrInvalid, err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrInvalid, path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, cfg)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	default:
		return fmt.Errorf("%w: unsupported config file type %q", ErrInvalid, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrInvalid, path, err)
	}
	return nil
}

// Policy converts the selection settings.
func (c Config) Policy() (selection.Policy, error) {
	p := selection.Policy{IncludeEnd: c.IncludeEnd, MaxFrames: c.MaxFrames}
	if len(c.Timestamps) > 0 {
		p.Timestamps = make([]time.Duration, len(c.Timestamps))
		for i, s := range c.Timestamps {
			ts, err := selection.Seconds(s)
			if err != nil {
				return selection.Policy{}, fmt.Errorf("timestamp %d: %w", i, err)
			}
			p.Timestamps[i] = ts
		}
		return p, nil
	}
	interval, err := selection.Seconds(c.Interval)
	if err != nil {
		return selection.Policy{}, fmt.Errorf("interval: %w", err)
	}
	p.Interval = interval
	return p, nil
}

// Job validates the configuration and builds the extraction job.
func (c Config) Job() (extract.Job, error) {
	if strings.TrimSpace(c.Source) == "" {
		return extract.Job{}, fmt.Errorf("%w: source is required", ErrInvalid)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return extract.Job{}, fmt.Errorf("%w: output_dir is required", ErrInvalid)
	}
	format, err := output.ParseFormat(c.Format)
	if err != nil {
		return extract.Job{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	naming, err := output.ParseNaming(c.Naming)
	if err != nil {
		return extract.Job{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	policy, err := c.Policy()
	if err != nil {
		return extract.Job{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := policy.Validate(); err != nil {
		return extract.Job{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	job := extract.Job{
		SourcePath: c.Source,
		OutputDir:  c.OutputDir,
		Selection:  policy,
		Format:     format,
		Quality:    c.Quality,
		Width:      c.Width,
		Height:     c.Height,
		Naming:     naming,
		Manifest:   c.Manifest,
		Archive:    c.Archive,
	}
	if err := job.Validate(); err != nil {
		return extract.Job{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return job, nil
}

// ServerConfig configures the daemon. It is read from the environment only.
type ServerConfig struct {
	Addr           string   `env:"FRAMEGEN_ADDR" envDefault:":8080"`
	FramesRoot     string   `env:"FRAMES_ROOT" envDefault:"frames"`
	AllowedOrigins []string `env:"FRAMEGEN_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:*,http://127.0.0.1:*"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	// Stateless writes frames into a temporary root removed on shutdown.
	Stateless bool `env:"STATELESS_MODE"`
	// JobDefaults points at a config file whose values seed every job.
	JobDefaults string `env:"FRAMEGEN_CONFIG"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("%w: environment: %w", ErrInvalid, err)
	}
	return cfg, nil
}
