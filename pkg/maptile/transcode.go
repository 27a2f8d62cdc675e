package maptile

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/adtconv/pkg/formats"
)

// Transcode converts a parsed source tile in a single pass.
// On error no tile is returned.
func Transcode(src *formats.ADT, opts Options) (*Tile, error) {
	if len(src.Chunks) != ChunksPerTile {
		return nil, fmt.Errorf("%w: %d, expected %d", ErrCellCount, len(src.Chunks), ChunksPerTile)
	}

	t := &Tile{
		Textures: StripNames(src.Textures),
		Models:   StripNames(src.Models),
		WMOs:     StripNames(src.WMOs),
	}

	if err := t.transcodeCells(src.Chunks, opts); err != nil {
		return nil, err
	}

	t.Doodads = make([]Doodad, len(src.Doodads))
	for i := range src.Doodads {
		d, err := TranscodeDoodad(&src.Doodads[i], t.Models, opts)
		if err != nil {
			return nil, fmt.Errorf("doodad %d: %w", i, err)
		}
		t.Doodads[i] = d
	}

	t.BaseX = t.Cells[0].BaseX
	t.BaseY = t.Cells[0].BaseY
	t.BaseHeight = t.Cells[0].BaseHeight

	return t, nil
}

// transcodeCells fills every cell. Cells own disjoint memory, so with
// Workers > 1 they are converted concurrently.
func (t *Tile) transcodeCells(chunks []formats.ADTChunk, opts Options) error {
	if opts.Workers <= 1 {
		for i := range chunks {
			if err := transcodeCell(&t.Cells[i], &chunks[i], t.Textures, opts); err != nil {
				return fmt.Errorf("cell %d: %w", i, err)
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range chunks {
		i := i
		g.Go(func() error {
			if err := transcodeCell(&t.Cells[i], &chunks[i], t.Textures, opts); err != nil {
				return fmt.Errorf("cell %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func transcodeCell(dst *Cell, src *formats.ADTChunk, textures []string, opts Options) error {
	hdr := &src.Header

	// Source ground axes are x/z, height is the vertical base.
	dst.BaseX = hdr.XBase
	dst.BaseY = hdr.ZBase
	dst.BaseHeight = hdr.HeightBase
	dst.LiquidHeight = src.Liquid.Level
	dst.LiquidHeights = LiquidHeights(&src.Liquid)

	coarse, fine, err := SplitHeights(src.Heights)
	if err != nil {
		return err
	}
	dst.CoarseHeights = coarse
	dst.FineHeights = fine

	if int(hdr.NumLayers) > len(src.Layers) {
		return fmt.Errorf("%w: %d declared, %d present", ErrLayerCount, hdr.NumLayers, len(src.Layers))
	}
	if hdr.NumLayers > 0 {
		dst.Layers = make([]string, hdr.NumLayers)
	}
	for i := range dst.Layers {
		path, err := LayerTexture(textures, src.Layers[i].TextureID, opts.TextureDir)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		dst.Layers[i] = path
	}

	planes, err := UnpackAlphaPlanes(src)
	if err != nil {
		return err
	}
	dst.AlphaPlanes = planes

	return nil
}
