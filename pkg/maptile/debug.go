package maptile

import (
	"bufio"
	"io"
)

const dumpAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// DebugDump writes a character map of the coarse heightfield, one character
// per vertex and 144 characters per line. Each character covers 10 height
// units and zero maps to 'h'; heights past either end of the range saturate.
func (t *Tile) DebugDump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for cy := 0; cy < CellsPerRow; cy++ {
		for vy := 0; vy < CoarseRow; vy++ {
			for cx := 0; cx < CellsPerRow; cx++ {
				c := t.Cell(cy, cx)
				for vx := 0; vx < CoarseRow; vx++ {
					bw.WriteByte(dumpChar(c.Height(vy, vx)))
				}
			}
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

func dumpChar(z float32) byte {
	pos := 17 + int(z)/10
	if pos < 0 {
		pos = 0
	}
	if pos > len(dumpAlphabet)-1 {
		pos = len(dumpAlphabet) - 1
	}
	return dumpAlphabet[pos]
}
