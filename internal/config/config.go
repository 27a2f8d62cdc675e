// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Faultbox/adtconv/pkg/maptile"
)

// Config holds all converter settings.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ConvertConfig holds settings of a single tile conversion.
type ConvertConfig struct {
	ZeroPoint   float32 `yaml:"zero_point"`   // world-center offset of the map system
	TextureDir  string  `yaml:"texture_dir"`  // prefix for layer textures
	ModelDir    string  `yaml:"model_dir"`    // prefix for doodad models
	ModelExt    string  `yaml:"model_ext"`    // extension replacing ".mdx"
	CellWorkers int     `yaml:"cell_workers"` // concurrent cells per tile
}

// BatchConfig holds settings for converting a directory of tiles.
type BatchConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	Pattern   string `yaml:"pattern"`    // glob matched against file names
	OutputExt string `yaml:"output_ext"` // replaces the input extension
	Workers   int    `yaml:"workers"`    // tiles converted concurrently
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			ZeroPoint:   maptile.DefaultZeroPoint,
			TextureDir:  maptile.DefaultTextureDir,
			ModelDir:    maptile.DefaultModelDir,
			ModelExt:    maptile.DefaultModelExt,
			CellWorkers: 1,
		},
		Batch: BatchConfig{
			InputDir:  ".",
			OutputDir: "tiles",
			Pattern:   "*.adt",
			OutputExt: ".tile",
			Workers:   runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Options returns the transcoder options for this configuration.
func (c ConvertConfig) Options() maptile.Options {
	return maptile.Options{
		ZeroPoint:  c.ZeroPoint,
		TextureDir: c.TextureDir,
		ModelDir:   c.ModelDir,
		ModelExt:   c.ModelExt,
		Workers:    c.CellWorkers,
	}
}

// Validate reports settings the converter cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Convert.ZeroPoint <= 0 {
		errs = append(errs, fmt.Errorf("convert.zero_point must be positive, got %v", c.Convert.ZeroPoint))
	}
	if c.Convert.ModelExt == "" {
		errs = append(errs, errors.New("convert.model_ext must not be empty"))
	}
	if c.Convert.CellWorkers < 1 {
		errs = append(errs, fmt.Errorf("convert.cell_workers must be at least 1, got %d", c.Convert.CellWorkers))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers))
	}
	if c.Batch.Pattern == "" {
		errs = append(errs, errors.New("batch.pattern must not be empty"))
	}
	return errors.Join(errs...)
}
