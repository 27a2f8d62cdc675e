// adtconv converts client ADT terrain tiles into server map tiles.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Faultbox/adtconv/internal/config"
	"github.com/Faultbox/adtconv/internal/logger"
)

const desc = `Converts client ADT terrain tiles (heights, texture layers, doodads) into normalized map tiles.`

// CLI is the command-line interface.
type CLI struct {
	Config      string  `help:"Path to config file." type:"path"`
	Debug       bool    `help:"Enable debug logging."`
	LogFile     string  `help:"Also write logs to this file." type:"path"`
	ZeroPoint   float32 `help:"World-center offset of the map coordinate system."`
	CellWorkers int     `help:"Cells transcoded concurrently per tile."`

	Convert    ConvertCmd `cmd:"" help:"Convert a single tile."`
	Batch      BatchCmd   `cmd:"" help:"Convert every matching tile in a directory."`
	Watch      WatchCmd   `cmd:"" help:"Convert tiles whenever they change."`
	Info       InfoCmd    `cmd:"" help:"Show a summary of an ADT, a converted tile or a map directory."`
	ShowConfig ConfigCmd  `cmd:"" name:"config" help:"Print or save the effective configuration."`
}

func (c *CLI) overrides() config.Overrides {
	return config.Overrides{
		Debug:       c.Debug,
		LogFile:     c.LogFile,
		ZeroPoint:   c.ZeroPoint,
		CellWorkers: c.CellWorkers,
	}
}

// setup loads the configuration with the given command-line values applied
// and starts logging.
func (c *CLI) setup(ov config.Overrides) (*config.Config, error) {
	cfg, err := config.Load(c.Config, ov)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, os.Stderr); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(
		&cli,
		kong.Name("adtconv"),
		kong.Description(desc),
	)

	err := ctx.Run(&cli)
	logger.Sync()
	ctx.FatalIfErrorf(err)
}
