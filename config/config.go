package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultPath is where both binaries look for a config file.
const DefaultPath = "config.yaml"

type Config struct {
	Data struct {
		Path string `yaml:"path"`
	} `yaml:"data"`
	Model       ModelConfig       `yaml:"model"`
	Training    TrainingConfig    `yaml:"training"`
	Http        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
	Database    DatabaseConfig    `yaml:"database"`
	Categorizer CategorizerConfig `yaml:"categorizer"`
}

type ModelConfig struct {
	Path    string `yaml:"path"`
	Type    string `yaml:"type"`
	Version string `yaml:"version"`
}

type TrainingConfig struct {
	TestRatio     float64 `yaml:"test_ratio"`
	Seed          int64   `yaml:"seed"`
	MinClassCount int     `yaml:"min_class_count"`
	NgramMin      int     `yaml:"ngram_min"`
	NgramMax      int     `yaml:"ngram_max"`
	MinDF         int     `yaml:"min_df"`
	MaxIter       int     `yaml:"max_iter"`
	C             float64 `yaml:"c"`
	Tol           float64 `yaml:"tol"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Env        string `yaml:"env"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CategorizerConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Data.Path = "data/documents_balanced.csv"
	cfg.Model = ModelConfig{
		Path:    "model/document_classifier.joblib",
		Type:    "tfidf_logreg",
		Version: "v1",
	}
	cfg.Training = TrainingConfig{
		TestRatio:     0.3,
		Seed:          42,
		MinClassCount: 2,
		NgramMin:      1,
		NgramMax:      2,
		MinDF:         2,
		MaxIter:       1000,
		C:             1.0,
		Tol:           1e-4,
	}
	cfg.Http = HTTPConfig{
		Host:         "127.0.0.1",
		Port:         5001,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	cfg.Log = LogConfig{
		Level:      "info",
		Env:        "dev",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
	cfg.Database.Path = "model/training_log.db"
	cfg.Categorizer = CategorizerConfig{
		URL:     "http://localhost:5001/predict",
		Timeout: 10 * time.Second,
	}
	return cfg
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return errors.New("data.path is required")
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	t := c.Training
	if t.TestRatio <= 0 || t.TestRatio >= 1 {
		return fmt.Errorf("training.test_ratio must be in (0,1), got %v", t.TestRatio)
	}
	if t.MinClassCount < 2 {
		return fmt.Errorf("training.min_class_count must be >= 2, got %d", t.MinClassCount)
	}
	if t.NgramMin < 1 || t.NgramMax < t.NgramMin {
		return fmt.Errorf("invalid ngram range (%d, %d)", t.NgramMin, t.NgramMax)
	}
	if t.MinDF < 1 {
		return fmt.Errorf("training.min_df must be >= 1, got %d", t.MinDF)
	}
	if t.MaxIter <= 0 {
		return fmt.Errorf("training.max_iter must be positive, got %d", t.MaxIter)
	}
	if t.C <= 0 {
		return fmt.Errorf("training.c must be positive, got %v", t.C)
	}
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.Http.Port)
	}
	return nil
}

// Addr is the listen address for the predictor service. An empty host
// listens on every interface.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Http.Host, strconv.Itoa(c.Http.Port))
}
