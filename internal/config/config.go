package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Face pipeline
	ProviderType string `envconfig:"FACE_PROVIDER" default:"deepface"`
	DeepFaceURL  string `envconfig:"DEEPFACE_URL" default:"http://localhost:5000"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Image storage
	StorageType string `envconfig:"STORAGE_TYPE" default:"local"`
	StorageDir  string `envconfig:"STORAGE_DIR" default:"./uploads"`
	S3Bucket    string `envconfig:"S3_BUCKET"`

	// Search
	MaxCandidates       int           `envconfig:"MAX_CANDIDATES" default:"50"`
	SimilarityThreshold float64       `envconfig:"SIMILARITY_THRESHOLD" default:"0.6"`
	ClassifyTimeout     time.Duration `envconfig:"CLASSIFY_TIMEOUT" default:"15s"`
	ClassifyWorkers     int           `envconfig:"CLASSIFY_WORKERS" default:"4"`

	// Retention
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be within [0, 1], got %v", c.SimilarityThreshold)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("MAX_CANDIDATES must be positive, got %d", c.MaxCandidates)
	}
	if c.ClassifyWorkers < 1 {
		return fmt.Errorf("CLASSIFY_WORKERS must be positive, got %d", c.ClassifyWorkers)
	}
	if c.StorageType == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when STORAGE_TYPE=s3")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
