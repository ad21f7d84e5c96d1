// Package config loads pruner defaults from an optional YAML file and the
// environment. Command line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/FairwindsOps/index-pruner/pkg/retention"
)

// Environment variables consulted for connection settings.
const (
	EnvURL      = "ES_URL"
	EnvUsername = "ES_USERNAME"
	EnvPassword = "ES_PASSWORD"
)

// Defaults
const (
	DefaultIndexPrefix = "zis-audit-"
	DefaultOlderThan   = "25m"
)

// File is the YAML configuration file layout. Every field is optional.
type File struct {
	URL             string                `yaml:"url"`
	Username        string                `yaml:"username"`
	Password        string                `yaml:"password"`
	IndexPrefix     string                `yaml:"indexPrefix"`
	OlderThan       string                `yaml:"olderThan"`
	DatePattern     *retention.Convention `yaml:"datePattern"`
	DeleteRateLimit time.Duration         `yaml:"deleteRateLimit"`
	Timeout         time.Duration         `yaml:"timeout"`
	PushgatewayURL  string                `yaml:"pushgatewayURL"`
}

// Load reads the YAML file at path. An empty path returns an empty File.
func Load(path string) (*File, error) {
	var f File
	if path == "" {
		return &f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	return &f, nil
}

// ApplyEnv fills empty connection settings from the environment, loading a
// .env file from the working directory first if one exists.
func (f *File) ApplyEnv() {
	// Missing .env is fine
	_ = godotenv.Load()

	if f.URL == "" {
		f.URL = os.Getenv(EnvURL)
	}
	if f.Username == "" {
		f.Username = os.Getenv(EnvUsername)
	}
	if f.Password == "" {
		f.Password = os.Getenv(EnvPassword)
	}
}
