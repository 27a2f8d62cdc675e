// Package maptile converts client terrain tiles into the normalized tile
// representation used by the server and renderer.
package maptile

import "github.com/Faultbox/adtconv/pkg/math"

// Tile grid constants.
const (
	ChunksPerTile  = 256 // 16x16 cells
	CellsPerRow    = 16
	CoarseRow      = 9
	FineRow        = 8
	CoarseVertices = CoarseRow * CoarseRow
	FineVertices   = FineRow * FineRow
	HeightSamples  = CoarseVertices + FineVertices
	LiquidVertices = 81
)

// Tile is a transcoded terrain tile. It is built once by Transcode and not
// modified afterwards.
type Tile struct {
	Textures []string // file names, index-aligned with the source list
	Models   []string
	WMOs     []string

	Cells   [ChunksPerTile]Cell // row-major, index row*16+col
	Doodads []Doodad

	// Copied from Cells[0].
	BaseX      float32
	BaseY      float32
	BaseHeight float32
}

// Cell is one of the 256 subdivisions of a tile.
type Cell struct {
	BaseX        float32
	BaseY        float32
	BaseHeight   float32
	LiquidHeight float32

	CoarseHeights [CoarseVertices]float32 // 9x9, relative to BaseHeight
	FineHeights   [FineVertices]float32   // 8x8, centered between coarse vertices
	LiquidHeights [LiquidVertices]float32 // 9x9, absolute

	Layers      []string // texture path per layer
	AlphaPlanes []AlphaPlane
}

// Doodad is a static model placement in tile coordinates.
type Doodad struct {
	Position    math.Vec3
	Orientation math.Vec3
	Scale       float32
	Flags       uint16
	UniqueID    uint32
	Model       string
}

// Cell returns the cell at the given grid position.
// Returns nil if coordinates are out of bounds.
func (t *Tile) Cell(row, col int) *Cell {
	if row < 0 || col < 0 || row >= CellsPerRow || col >= CellsPerRow {
		return nil
	}
	return &t.Cells[row*CellsPerRow+col]
}

// Coarse returns the coarse height offset at (row, col) of the 9x9 grid.
func (c *Cell) Coarse(row, col int) float32 {
	return c.CoarseHeights[row*CoarseRow+col]
}

// Fine returns the fine height offset at (row, col) of the 8x8 grid.
func (c *Cell) Fine(row, col int) float32 {
	return c.FineHeights[row*FineRow+col]
}

// Height returns the absolute coarse height at (row, col).
func (c *Cell) Height(row, col int) float32 {
	return c.BaseHeight + c.Coarse(row, col)
}

// LayerCount returns the number of texture layers over all cells.
func (t *Tile) LayerCount() int {
	n := 0
	for i := range t.Cells {
		n += len(t.Cells[i].Layers)
	}
	return n
}
