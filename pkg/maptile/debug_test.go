package maptile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugDump(t *testing.T) {
	tile := &Tile{}
	tile.Cells[0].BaseHeight = 25     // 17 + 2 -> 'j'
	tile.Cells[1].BaseHeight = -30    // 17 - 3 -> 'e'
	tile.Cells[2].BaseHeight = 1000   // saturates to 'z'
	tile.Cells[3].BaseHeight = -10000 // saturates to '0'

	var buf bytes.Buffer
	require.NoError(t, tile.DebugDump(&buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, CellsPerRow*CoarseRow)
	for _, l := range lines {
		assert.Len(t, l, CellsPerRow*CoarseRow)
	}

	first := lines[0]
	assert.Equal(t, strings.Repeat("j", 9), first[0:9])
	assert.Equal(t, strings.Repeat("e", 9), first[9:18])
	assert.Equal(t, strings.Repeat("z", 9), first[18:27])
	assert.Equal(t, strings.Repeat("0", 9), first[27:36])
	assert.Equal(t, strings.Repeat("h", 9), first[36:45])
}
