package config

// Overrides holds command-line values. Zero values leave the config unchanged.
type Overrides struct {
	Debug       bool
	LogFile     string
	InputDir    string
	OutputDir   string
	Pattern     string
	Workers     int
	CellWorkers int
	ZeroPoint   float32
}

// apply applies CLI overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.InputDir != "" {
		cfg.Batch.InputDir = o.InputDir
	}
	if o.OutputDir != "" {
		cfg.Batch.OutputDir = o.OutputDir
	}
	if o.Pattern != "" {
		cfg.Batch.Pattern = o.Pattern
	}
	if o.Workers > 0 {
		cfg.Batch.Workers = o.Workers
	}
	if o.CellWorkers > 0 {
		cfg.Convert.CellWorkers = o.CellWorkers
	}
	if o.ZeroPoint > 0 {
		cfg.Convert.ZeroPoint = o.ZeroPoint
	}
}
