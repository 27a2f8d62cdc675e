package maptile

// DefaultZeroPoint is the world-center offset: 32 tiles of 533.33333 units.
const DefaultZeroPoint = float32(32 * 533.33333)

// Default asset locations of the target layout.
const (
	DefaultTextureDir = "data/texture/"
	DefaultModelDir   = "./data/model/"
	DefaultModelExt   = "m2"
)

// Options controls a transcoding pass.
type Options struct {
	// ZeroPoint converts absolute placement coordinates to center-relative ones.
	// It is a map-wide constant, not tile-local.
	ZeroPoint float32

	TextureDir string // prefix for layer texture paths
	ModelDir   string // prefix for doodad model paths
	ModelExt   string // replaces the 3-character source model extension

	// Workers > 1 transcodes cells concurrently. Output is identical.
	Workers int
}

// DefaultOptions returns options for the standard world layout.
func DefaultOptions() Options {
	return Options{
		ZeroPoint:  DefaultZeroPoint,
		TextureDir: DefaultTextureDir,
		ModelDir:   DefaultModelDir,
		ModelExt:   DefaultModelExt,
		Workers:    1,
	}
}
