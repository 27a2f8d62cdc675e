package maptile

import (
	"github.com/Faultbox/adtconv/pkg/formats"
	"github.com/Faultbox/adtconv/pkg/math"
)

// Scale encoding of placement records.
const (
	ScaleUnit    = 1024.0  // raw scale of 1.0
	ScaleEpsilon = 0.00001 // below this the record has no scale
)

// orientationOrder maps source rotation (a, b, c) to output (ox, oy, oz).
// The two formats use different axis conventions; this is not identity.
var orientationOrder = [3]int{2, 1, 0}

// TranscodeDoodad converts one placement record into tile coordinates.
// models must be the stripped model list of the tile.
func TranscodeDoodad(src *formats.ADTDoodad, models []string, opts Options) (Doodad, error) {
	model, err := ModelPath(models, src.ModelID, opts.ModelDir, opts.ModelExt)
	if err != nil {
		return Doodad{}, err
	}

	p := src.Position
	return Doodad{
		Position: math.Vec3{
			X: -(p[2] - opts.ZeroPoint),
			Y: -(p[0] - opts.ZeroPoint),
			Z: p[1],
		},
		Orientation: math.Swizzle(src.Rotation, orientationOrder),
		Scale:       DecodeScale(src.Scale),
		Flags:       src.Flags,
		UniqueID:    src.UniqueID,
		Model:       model,
	}, nil
}

// DecodeScale converts a raw placement scale. Zero means no scale override.
func DecodeScale(raw uint16) float32 {
	scale := float32(raw) / ScaleUnit
	if scale < ScaleEpsilon {
		return 1
	}
	return scale
}
