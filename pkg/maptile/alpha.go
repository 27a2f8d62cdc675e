package maptile

import (
	"fmt"

	"github.com/Faultbox/adtconv/pkg/formats"
)

// Alpha map constants.
const (
	AlphaHeaderSize = 8    // MCAL header counted in the declared section size
	AlphaSourceSize = 2048 // 64 rows of 32 packed bytes
	AlphaRows       = 64
	AlphaPackedCols = 32
	AlphaCols       = 64
	AlphaPlaneSize  = AlphaRows * AlphaCols
)

// AlphaPlane is a 64x64 blend-weight grid, one byte per weight.
// Weights keep their 4-bit range 0-15.
type AlphaPlane [AlphaPlaneSize]byte

// At returns the weight at (row, col).
func (p *AlphaPlane) At(row, col int) byte {
	return p[row*AlphaCols+col]
}

// AlphaPlaneCount returns the number of planes in an alpha section of the
// declared size. A size of zero or just the header means no planes.
func AlphaPlaneCount(sectionSize uint32) (int, error) {
	if sectionSize == 0 || sectionSize == AlphaHeaderSize {
		return 0, nil
	}
	if sectionSize < AlphaHeaderSize || (sectionSize-AlphaHeaderSize)%AlphaSourceSize != 0 {
		return 0, fmt.Errorf("%w: %d", ErrAlphaSectionSize, sectionSize)
	}
	return int((sectionSize - AlphaHeaderSize) / AlphaSourceSize), nil
}

// UnpackAlpha expands one packed plane. The high nibble of the byte at
// (row, c) goes to column 2c and the low nibble to column 2c+1.
func UnpackAlpha(packed []byte) (AlphaPlane, error) {
	var plane AlphaPlane
	if len(packed) != AlphaSourceSize {
		return plane, fmt.Errorf("%w: plane of %d bytes", ErrAlphaTruncated, len(packed))
	}

	for row := 0; row < AlphaRows; row++ {
		src := packed[row*AlphaPackedCols : (row+1)*AlphaPackedCols]
		dst := plane[row*AlphaCols : (row+1)*AlphaCols]
		for c, b := range src {
			dst[2*c] = b >> 4
			dst[2*c+1] = b & 0x0F
		}
	}

	return plane, nil
}

// UnpackAlphaPlanes expands every plane declared by the chunk header.
func UnpackAlphaPlanes(chunk *formats.ADTChunk) ([]AlphaPlane, error) {
	count, err := AlphaPlaneCount(chunk.Header.SizeAlpha)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	planes := make([]AlphaPlane, count)
	for i := range planes {
		packed := chunk.AlphaPlane(i)
		if packed == nil {
			return nil, fmt.Errorf("%w: plane %d of %d, have %d bytes", ErrAlphaTruncated, i, count, len(chunk.Alpha))
		}
		if planes[i], err = UnpackAlpha(packed); err != nil {
			return nil, err
		}
	}
	return planes, nil
}
