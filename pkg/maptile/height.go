package maptile

import (
	"fmt"

	"github.com/Faultbox/adtconv/pkg/formats"
)

// SplitHeights splits an interleaved height stream into the 9x9 coarse and
// 8x8 fine grids. The stream holds 9 rows of 9 coarse samples, each but the
// last followed by 8 fine samples. Samples past 145 are ignored.
func SplitHeights(stream []float32) (coarse [CoarseVertices]float32, fine [FineVertices]float32, err error) {
	if len(stream) < HeightSamples {
		return coarse, fine, fmt.Errorf("%w: got %d", ErrShortHeightStream, len(stream))
	}

	var nc, nf int
	for {
		for i := 0; i < CoarseRow; i++ {
			coarse[nc] = stream[nc+nf]
			nc++
		}
		if nc+nf >= HeightSamples {
			break
		}
		for i := 0; i < FineRow; i++ {
			fine[nf] = stream[nc+nf]
			nf++
		}
	}

	return coarse, fine, nil
}

// LiquidHeights extracts the absolute height of each liquid vertex.
func LiquidHeights(liquid *formats.ADTLiquid) [LiquidVertices]float32 {
	var out [LiquidVertices]float32
	for i := range out {
		out[i] = liquid.Vertices[i].Height
	}
	return out
}
