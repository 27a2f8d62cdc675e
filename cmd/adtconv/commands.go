package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/adtconv/internal/batch"
	"github.com/Faultbox/adtconv/internal/config"
	"github.com/Faultbox/adtconv/internal/logger"
	"github.com/Faultbox/adtconv/pkg/formats"
	"github.com/Faultbox/adtconv/pkg/maptile"
)

// ConvertCmd converts one tile.
type ConvertCmd struct {
	Input  string `arg:"" type:"path" help:"ADT file to convert."`
	Output string `arg:"" optional:"" type:"path" help:"Output tile (default: input with the output extension)."`
	Dump   string `type:"path" help:"Also write a height character map to this file."`
}

// Run converts the tile.
func (c *ConvertCmd) Run(g *CLI) error {
	cfg, err := g.setup(g.overrides())
	if err != nil {
		return err
	}

	output := c.Output
	if output == "" {
		output = strings.TrimSuffix(c.Input, filepath.Ext(c.Input)) + cfg.Batch.OutputExt
	}

	start := time.Now()
	adt, err := formats.ParseADTFile(c.Input)
	if err != nil {
		return err
	}

	tile, err := maptile.Transcode(adt, cfg.Convert.Options())
	if err != nil {
		return fmt.Errorf("transcoding %s: %w", c.Input, err)
	}
	logger.Debug("tile first chunk base",
		zap.Float32("h", tile.BaseHeight),
		zap.Float32("x", tile.BaseX),
		zap.Float32("y", tile.BaseY),
	)

	if err := maptile.WriteFile(output, tile); err != nil {
		return err
	}

	if c.Dump != "" {
		f, err := os.Create(c.Dump)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := tile.DebugDump(f); err != nil {
			return fmt.Errorf("writing dump: %w", err)
		}
	}

	logger.Info("tile converted",
		zap.String("tile", c.Input),
		zap.String("output", output),
		zap.Int("layers", tile.LayerCount()),
		zap.Int("doodads", len(tile.Doodads)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// BatchCmd converts a directory.
type BatchCmd struct {
	Input   string `short:"i" type:"path" help:"Input directory (overrides batch.input_dir)."`
	Output  string `short:"o" type:"path" help:"Output directory (overrides batch.output_dir)."`
	Pattern string `help:"File name pattern (overrides batch.pattern)."`
	Workers int    `short:"j" help:"Tiles converted concurrently (overrides batch.workers)."`
	DumpMap bool   `help:"Print the 64x64 grid of converted tiles for each map."`
}

// Run converts every matching file.
func (c *BatchCmd) Run(g *CLI) error {
	ov := g.overrides()
	ov.InputDir = c.Input
	ov.OutputDir = c.Output
	ov.Pattern = c.Pattern
	ov.Workers = c.Workers
	cfg, err := g.setup(ov)
	if err != nil {
		return err
	}

	bc := batch.FromConfig(cfg)
	if c.DumpMap {
		bc.Index = batch.NewIndex()
	}

	files, err := batch.Discover(bc.InputDir, bc.Pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no tiles found", zap.String("dir", bc.InputDir), zap.String("pattern", bc.Pattern))
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	logger.Info("batch started", zap.Int("tiles", len(files)), zap.Int("workers", bc.Workers))
	results := batch.Run(ctx, bc, files)

	ok, failed := batch.Summarize(results)
	logger.Info("batch finished",
		zap.Int("converted", ok),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)),
	)
	if bc.Index != nil {
		if err := printMaps(bc.Index); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tiles failed", failed, len(files))
	}
	return nil
}

// WatchCmd converts tiles as they change.
type WatchCmd struct {
	Input    string        `short:"i" type:"path" help:"Directory to watch (overrides batch.input_dir)."`
	Output   string        `short:"o" type:"path" help:"Output directory (overrides batch.output_dir)."`
	Debounce time.Duration `default:"300ms" help:"Quiet period before a changed file is converted."`
}

// Run watches until interrupted.
func (c *WatchCmd) Run(g *CLI) error {
	ov := g.overrides()
	ov.InputDir = c.Input
	ov.OutputDir = c.Output
	cfg, err := g.setup(ov)
	if err != nil {
		return err
	}

	bc := batch.FromConfig(cfg)
	bc.ProgressInterval = 0

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Per-tile results are logged by the batch runner.
	return batch.Watch(ctx, bc, c.Debounce, nil)
}

// InfoCmd prints a tile summary.
type InfoCmd struct {
	File    string `arg:"" type:"path" help:"ADT, converted tile or directory of tiles."`
	Pattern string `help:"File name pattern for directories (overrides batch.pattern)."`
}

// Run prints the summary.
func (c *InfoCmd) Run(g *CLI) error {
	ov := g.overrides()
	ov.Pattern = c.Pattern
	cfg, err := g.setup(ov)
	if err != nil {
		return err
	}

	if fi, err := os.Stat(c.File); err == nil && fi.IsDir() {
		files, err := batch.Discover(c.File, cfg.Batch.Pattern)
		if err != nil {
			return err
		}
		fmt.Printf("Directory: %s (%d files matching %s)\n", c.File, len(files), cfg.Batch.Pattern)
		return printMaps(batch.IndexFiles(files))
	}

	if strings.EqualFold(filepath.Ext(c.File), ".adt") {
		adt, err := formats.ParseADTFile(c.File)
		if err != nil {
			return err
		}
		printADTInfo(c.File, adt)
		return nil
	}

	tile, err := maptile.ReadFile(c.File)
	if err != nil {
		return err
	}
	printTileInfo(c.File, tile)
	return nil
}

func printADTInfo(path string, adt *formats.ADT) {
	min, max := adt.GetHeightRange()
	liquid := 0
	for i := range adt.Chunks {
		if adt.Chunks[i].HasLiquid {
			liquid++
		}
	}

	fmt.Printf("ADT:      %s\n", path)
	fmt.Printf("Version:  %d\n", adt.Version)
	fmt.Printf("Chunks:   %d (%d with liquid)\n", len(adt.Chunks), liquid)
	fmt.Printf("Layers:   %d\n", adt.CountLayers())
	fmt.Printf("Heights:  %.2f .. %.2f\n", min, max)
	fmt.Printf("Textures: %d\n", len(adt.Textures))
	fmt.Printf("Models:   %d\n", len(adt.Models))
	fmt.Printf("WMOs:     %d\n", len(adt.WMOs))
	fmt.Printf("Doodads:  %d\n", len(adt.Doodads))
}

func printMaps(idx *batch.Index) error {
	for _, m := range idx.Maps() {
		fmt.Printf("Map:      %s (%d tiles, %dx%d grid)\n", m.Name, m.Count(), maptile.TileGridSize, maptile.TileGridSize)
		if err := m.DebugDump(os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func printTileInfo(path string, tile *maptile.Tile) {
	planes := 0
	for i := range tile.Cells {
		planes += len(tile.Cells[i].AlphaPlanes)
	}

	fmt.Printf("Tile:     %s\n", path)
	fmt.Printf("Base:     x=%.3f y=%.3f h=%.3f\n", tile.BaseX, tile.BaseY, tile.BaseHeight)
	fmt.Printf("Cells:    %d\n", len(tile.Cells))
	fmt.Printf("Layers:   %d (%d alpha planes)\n", tile.LayerCount(), planes)
	fmt.Printf("Textures: %d\n", len(tile.Textures))
	fmt.Printf("Models:   %d\n", len(tile.Models))
	fmt.Printf("WMOs:     %d\n", len(tile.WMOs))
	fmt.Printf("Doodads:  %d\n", len(tile.Doodads))
}

// ConfigCmd prints or saves the effective configuration.
type ConfigCmd struct {
	Save   bool   `help:"Write the configuration to the user config directory."`
	Output string `short:"o" type:"path" help:"Write the configuration to this path instead of printing it."`
}

// Run prints or saves the config.
func (c *ConfigCmd) Run(g *CLI) error {
	cfg, err := g.setup(g.overrides())
	if err != nil {
		return err
	}

	switch {
	case c.Output != "":
		if err := cfg.SaveTo(c.Output); err != nil {
			return err
		}
		logger.Sugar.Infof("config saved to %s", c.Output)
		return nil
	case c.Save:
		if err := cfg.Save(); err != nil {
			return err
		}
		logger.Sugar.Infof("config saved to %s", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
