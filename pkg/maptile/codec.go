package maptile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/adtconv/pkg/math"
)

// Tile file format errors.
var (
	ErrInvalidTileMagic       = errors.New("invalid tile magic: expected 'MTIL'")
	ErrUnsupportedTileVersion = errors.New("unsupported tile version")
	ErrTruncatedTileData      = errors.New("truncated tile data")
	ErrInvalidTileData        = errors.New("invalid tile data")
)

const (
	tileMagic = "MTIL"

	// TileVersion is the version written by Encode.
	TileVersion = 1

	maxNameLen     = 0xFFFF
	maxNames       = 1 << 20
	maxAlphaPlanes = 16
)

// cellRecord is the fixed-size part of an encoded cell.
type cellRecord struct {
	BaseX         float32
	BaseY         float32
	BaseHeight    float32
	LiquidHeight  float32
	CoarseHeights [CoarseVertices]float32
	FineHeights   [FineVertices]float32
	LiquidHeights [LiquidVertices]float32
}

// doodadRecord is the fixed-size part of an encoded doodad.
type doodadRecord struct {
	Position    [3]float32
	Orientation [3]float32
	Scale       float32
	Flags       uint16
	_           uint16
	UniqueID    uint32
}

// Encode writes t in the little-endian tile format:
//
//	"MTIL" version:u32 base:3*f32
//	textures, models, wmos: count:u32 (len:u16 bytes)*
//	256 cells: cellRecord layers(count:u32 (len:u16 bytes)*) planes(count:u32 4096*bytes)
//	doodads: count:u32 (doodadRecord model(len:u16 bytes))*
//
// Tiles Decode would reject fail with ErrInvalidTileData before anything is
// written.
func Encode(w io.Writer, t *Tile) error {
	if err := checkLimits(t); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	e := &encoder{w: bw}

	e.write([]byte(tileMagic))
	e.write(uint32(TileVersion))
	e.write([3]float32{t.BaseX, t.BaseY, t.BaseHeight})

	e.names(t.Textures)
	e.names(t.Models)
	e.names(t.WMOs)

	for i := range t.Cells {
		c := &t.Cells[i]
		e.write(&cellRecord{
			BaseX:         c.BaseX,
			BaseY:         c.BaseY,
			BaseHeight:    c.BaseHeight,
			LiquidHeight:  c.LiquidHeight,
			CoarseHeights: c.CoarseHeights,
			FineHeights:   c.FineHeights,
			LiquidHeights: c.LiquidHeights,
		})
		e.names(c.Layers)
		e.write(uint32(len(c.AlphaPlanes)))
		for p := range c.AlphaPlanes {
			e.write(c.AlphaPlanes[p][:])
		}
	}

	e.write(uint32(len(t.Doodads)))
	for i := range t.Doodads {
		d := &t.Doodads[i]
		e.write(&doodadRecord{
			Position:    d.Position.Array(),
			Orientation: d.Orientation.Array(),
			Scale:       d.Scale,
			Flags:       d.Flags,
			UniqueID:    d.UniqueID,
		})
		e.name(d.Model)
	}

	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

// Decode reads a tile written by Encode.
func Decode(r io.Reader) (*Tile, error) {
	d := &decoder{r: bufio.NewReader(r)}

	var magic [4]byte
	if err := d.read(&magic); err != nil {
		return nil, err
	}
	if string(magic[:]) != tileMagic {
		return nil, ErrInvalidTileMagic
	}

	var version uint32
	if err := d.read(&version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != TileVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTileVersion, version)
	}

	t := &Tile{}
	var base [3]float32
	if err := d.read(&base); err != nil {
		return nil, fmt.Errorf("reading base: %w", err)
	}
	t.BaseX, t.BaseY, t.BaseHeight = base[0], base[1], base[2]

	var err error
	if t.Textures, err = d.names(); err != nil {
		return nil, fmt.Errorf("reading textures: %w", err)
	}
	if t.Models, err = d.names(); err != nil {
		return nil, fmt.Errorf("reading models: %w", err)
	}
	if t.WMOs, err = d.names(); err != nil {
		return nil, fmt.Errorf("reading wmos: %w", err)
	}

	for i := range t.Cells {
		if err := d.cell(&t.Cells[i]); err != nil {
			return nil, fmt.Errorf("reading cell %d: %w", i, err)
		}
	}

	var count uint32
	if err := d.read(&count); err != nil {
		return nil, fmt.Errorf("reading doodad count: %w", err)
	}
	if count > maxNames {
		return nil, fmt.Errorf("%w: %d doodads", ErrInvalidTileData, count)
	}
	t.Doodads = make([]Doodad, count)
	for i := range t.Doodads {
		var rec doodadRecord
		if err := d.read(&rec); err != nil {
			return nil, fmt.Errorf("reading doodad %d: %w", i, err)
		}
		model, err := d.name()
		if err != nil {
			return nil, fmt.Errorf("reading doodad %d model: %w", i, err)
		}
		t.Doodads[i] = Doodad{
			Position:    math.Vec3FromArray(rec.Position),
			Orientation: math.Vec3FromArray(rec.Orientation),
			Scale:       rec.Scale,
			Flags:       rec.Flags,
			UniqueID:    rec.UniqueID,
			Model:       model,
		}
	}

	return t, nil
}

// WriteFile encodes t to path, creating parent directories.
// The tile is written to a temporary file first so readers never see a
// partially written tile.
func WriteFile(path string, t *Tile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Encode(f, t); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding tile: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile decodes a tile file from disk.
func ReadFile(path string) (*Tile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading tile file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// checkLimits applies the bounds Decode enforces.
func checkLimits(t *Tile) error {
	lists := []struct {
		what  string
		names []string
	}{
		{"textures", t.Textures},
		{"models", t.Models},
		{"wmos", t.WMOs},
	}
	for _, l := range lists {
		if err := checkNames(l.names); err != nil {
			return fmt.Errorf("%s: %w", l.what, err)
		}
	}

	for i := range t.Cells {
		c := &t.Cells[i]
		if err := checkNames(c.Layers); err != nil {
			return fmt.Errorf("cell %d layers: %w", i, err)
		}
		if len(c.AlphaPlanes) > maxAlphaPlanes {
			return fmt.Errorf("%w: cell %d has %d alpha planes, limit %d", ErrInvalidTileData, i, len(c.AlphaPlanes), maxAlphaPlanes)
		}
	}

	if len(t.Doodads) > maxNames {
		return fmt.Errorf("%w: %d doodads", ErrInvalidTileData, len(t.Doodads))
	}
	for i := range t.Doodads {
		if len(t.Doodads[i].Model) > maxNameLen {
			return fmt.Errorf("%w: doodad %d model name of %d bytes", ErrInvalidTileData, i, len(t.Doodads[i].Model))
		}
	}
	return nil
}

func checkNames(list []string) error {
	if len(list) > maxNames {
		return fmt.Errorf("%w: %d names", ErrInvalidTileData, len(list))
	}
	for _, s := range list {
		if len(s) > maxNameLen {
			return fmt.Errorf("%w: name of %d bytes", ErrInvalidTileData, len(s))
		}
	}
	return nil
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) write(v any) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, binary.LittleEndian, v)
}

func (e *encoder) name(s string) {
	e.write(uint16(len(s)))
	e.write([]byte(s))
}

func (e *encoder) names(list []string) {
	e.write(uint32(len(list)))
	for _, s := range list {
		e.name(s)
	}
}

type decoder struct {
	r io.Reader
}

func (d *decoder) read(v any) error {
	if err := binary.Read(d.r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncatedTileData
		}
		return err
	}
	return nil
}

func (d *decoder) name() (string, error) {
	var n uint16
	if err := d.read(&n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := d.read(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *decoder) names() ([]string, error) {
	var count uint32
	if err := d.read(&count); err != nil {
		return nil, err
	}
	if count > maxNames {
		return nil, fmt.Errorf("%w: %d names", ErrInvalidTileData, count)
	}
	if count == 0 {
		return nil, nil
	}
	list := make([]string, count)
	for i := range list {
		s, err := d.name()
		if err != nil {
			return nil, err
		}
		list[i] = s
	}
	return list, nil
}

func (d *decoder) cell(c *Cell) error {
	var rec cellRecord
	if err := d.read(&rec); err != nil {
		return err
	}
	c.BaseX = rec.BaseX
	c.BaseY = rec.BaseY
	c.BaseHeight = rec.BaseHeight
	c.LiquidHeight = rec.LiquidHeight
	c.CoarseHeights = rec.CoarseHeights
	c.FineHeights = rec.FineHeights
	c.LiquidHeights = rec.LiquidHeights

	layers, err := d.names()
	if err != nil {
		return err
	}
	c.Layers = layers

	var planes uint32
	if err := d.read(&planes); err != nil {
		return err
	}
	if planes > maxAlphaPlanes {
		return fmt.Errorf("%w: %d alpha planes", ErrInvalidTileData, planes)
	}
	if planes > 0 {
		c.AlphaPlanes = make([]AlphaPlane, planes)
		for p := range c.AlphaPlanes {
			if err := d.read(c.AlphaPlanes[p][:]); err != nil {
				return err
			}
		}
	}
	return nil
}
