// Package config holds the migration settings and loads them from files,
// the environment, and .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/quartz-migrate/internal/types"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the migrator reads.
const EnvPrefix = "QUARTZ_MIGRATE_"

// Config describes one migration run.
type Config struct {
	SourceDir      string                 `yaml:"source_dir" toml:"source_dir"`
	TargetDir      string                 `yaml:"target_dir" toml:"target_dir"`
	ImageSourceDir string                 `yaml:"image_source_dir" toml:"image_source_dir"`
	ImageTargetDir string                 `yaml:"image_target_dir" toml:"image_target_dir"`
	DryRun         bool                   `yaml:"dry_run" toml:"dry_run"`
	ProtectCode    bool                   `yaml:"protect_code" toml:"protect_code"`
	Categories     map[string]string      `yaml:"categories" toml:"categories"`
	SkipNames      []string               `yaml:"skip_names" toml:"skip_names"`
	Filter         types.PathFilterConfig `yaml:"filter" toml:"filter"`
}

// Default returns the settings of the original blog layout.
func Default() Config {
	return Config{
		SourceDir:      filepath.Join("src", "obsidian_quartz"),
		TargetDir:      filepath.Join("src", "content", "posts"),
		ImageSourceDir: filepath.Join("src", "obsidian_quartz", "images"),
		ImageTargetDir: filepath.Join("src", "content", "posts", "images"),
		SkipNames:      []string{"index.md", "robots.txt"},
	}
}

// Load returns the defaults overlaid with the given file, if any.
// The format is chosen by extension: .yaml, .yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return cfg, nil
}

// ApplyEnv overlays QUARTZ_MIGRATE_* variables. Values set in the process
// environment win over values read from envFiles (default ".env").
// Missing env files are ignored.
func (c *Config) ApplyEnv(envFiles ...string) error {
	fileEnv, err := godotenv.Read(envFiles...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := fileEnv[EnvPrefix+key]
		return v, ok
	}

	for key, dst := range map[string]*string{
		"SOURCE":        &c.SourceDir,
		"TARGET":        &c.TargetDir,
		"IMAGES":        &c.ImageSourceDir,
		"IMAGES_TARGET": &c.ImageTargetDir,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	for key, dst := range map[string]*bool{
		"DRY_RUN":      &c.DryRun,
		"PROTECT_CODE": &c.ProtectCode,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}

	return nil
}

// Validate checks that every directory is set.
func (c Config) Validate() error {
	for name, v := range map[string]string{
		"source_dir":       c.SourceDir,
		"target_dir":       c.TargetDir,
		"image_source_dir": c.ImageSourceDir,
		"image_target_dir": c.ImageTargetDir,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("invalid config: %s must not be empty", name)
		}
	}
	return nil
}
