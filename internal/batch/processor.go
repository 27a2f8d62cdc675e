// Package batch converts directories of terrain tiles.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/adtconv/internal/config"
	"github.com/Faultbox/adtconv/internal/logger"
	"github.com/Faultbox/adtconv/pkg/formats"
	"github.com/Faultbox/adtconv/pkg/maptile"
)

// Config holds the settings shared by a batch run.
type Config struct {
	InputDir  string
	OutputDir string
	Pattern   string
	OutputExt string
	Workers   int
	Options   maptile.Options

	// ProgressInterval is how often progress is logged. Zero disables it.
	ProgressInterval time.Duration

	// Index, when set, records every tile converted by Run.
	Index *Index
}

// FromConfig builds a batch configuration from the loaded settings.
func FromConfig(cfg *config.Config) Config {
	return Config{
		InputDir:         cfg.Batch.InputDir,
		OutputDir:        cfg.Batch.OutputDir,
		Pattern:          cfg.Batch.Pattern,
		OutputExt:        cfg.Batch.OutputExt,
		Workers:          cfg.Batch.Workers,
		Options:          cfg.Convert.Options(),
		ProgressInterval: 2 * time.Second,
	}
}

// Result holds the outcome of converting one tile.
type Result struct {
	Input    string
	Output   string
	Layers   int
	Doodads  int
	Duration time.Duration
	Err      error
}

// Discover returns the files under dir whose names match pattern, sorted.
func Discover(dir, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if Match(pattern, path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Match reports whether the file name of path matches pattern, ignoring case.
func Match(pattern, path string) bool {
	ok, _ := filepath.Match(strings.ToLower(pattern), strings.ToLower(filepath.Base(path)))
	return ok
}

// OutputPath maps an input file to its output file, mirroring the
// directory structure below the input directory.
func (c Config) OutputPath(input string) string {
	rel, err := filepath.Rel(c.InputDir, input)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(input)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + c.OutputExt
	return filepath.Join(c.OutputDir, rel)
}

// ConvertFile parses, transcodes and writes one tile.
// A tile that fails to transcode is never written.
func ConvertFile(input, output string, opts maptile.Options) Result {
	start := time.Now()
	res := Result{Input: input, Output: output}

	adt, err := formats.ParseADTFile(input)
	if err != nil {
		res.Err = err
		return res
	}

	tile, err := maptile.Transcode(adt, opts)
	if err != nil {
		res.Err = fmt.Errorf("transcoding: %w", err)
		return res
	}

	logger.Debug("tile first chunk base",
		zap.String("tile", filepath.Base(input)),
		zap.Float32("h", tile.BaseHeight),
		zap.Float32("x", tile.BaseX),
		zap.Float32("y", tile.BaseY),
		zap.Int("doodads", len(tile.Doodads)),
	)

	if err := maptile.WriteFile(output, tile); err != nil {
		res.Err = fmt.Errorf("writing: %w", err)
		return res
	}

	res.Layers = tile.LayerCount()
	res.Doodads = len(tile.Doodads)
	res.Duration = time.Since(start)
	return res
}

// Run converts files using a worker pool. Every file gets a Result, in
// input order. Files not started before ctx is cancelled report ctx.Err().
func Run(ctx context.Context, cfg Config, files []string) []Result {
	log := logger.Named("batch")
	total := len(files)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	defer close(done)
	if cfg.ProgressInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if p := processed.Load(); p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						log.Info("progress", zap.Int64("done", p), zap.Int("total", total), zap.Float64("tiles_per_sec", rate))
					}
				}
			}
		}()
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, input := range files {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Input: input, Err: err}
			continue
		}
		i, input := i, input
		g.Go(func() error {
			res := ConvertFile(input, cfg.OutputPath(input), cfg.Options)
			results[i] = res
			if res.Err == nil && cfg.Index != nil {
				cfg.Index.Add(input, nil)
			}
			processed.Add(1)
			logResult(log, res)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Summarize counts successful and failed results.
func Summarize(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}

func logResult(log *zap.Logger, res Result) {
	if res.Err != nil {
		log.Warn("tile failed", zap.String("tile", res.Input), zap.Error(res.Err))
		return
	}
	log.Info("tile converted",
		zap.String("tile", res.Input),
		zap.String("output", res.Output),
		zap.Int("layers", res.Layers),
		zap.Int("doodads", res.Doodads),
		zap.Duration("took", res.Duration),
	)
}
