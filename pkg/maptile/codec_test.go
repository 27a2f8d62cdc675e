package maptile

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcodedTile(t *testing.T) *Tile {
	t.Helper()
	src := newSourceTile()
	withAlpha(&src.Chunks[0], 2)
	withAlpha(&src.Chunks[255], 1)

	tile, err := Transcode(src, DefaultOptions())
	require.NoError(t, err)
	return tile
}

func TestEncodeDecode(t *testing.T) {
	tile := transcodedTile(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tile))
	assert.Equal(t, "MTIL", string(buf.Bytes()[:4]))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, tile, got)
}

func TestWriteReadFile(t *testing.T) {
	tile := transcodedTile(t)
	path := filepath.Join(t.TempDir(), "azeroth", "azeroth_32_48.tile")

	require.NoError(t, WriteFile(path, tile))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tile, got)

	assert.NoFileExists(t, path+".tmp")
}

func TestDecode_Errors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, transcodedTile(t)))
	data := buf.Bytes()

	_, err := Decode(bytes.NewReader([]byte("XXXX\x01\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrInvalidTileMagic)

	bad := append([]byte{}, data...)
	bad[4] = 9
	_, err = Decode(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrUnsupportedTileVersion)

	_, err = Decode(bytes.NewReader(data[:len(data)/2]))
	assert.ErrorIs(t, err, ErrTruncatedTileData)

	_, err = Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrTruncatedTileData)
}

func TestEncode_NameTooLong(t *testing.T) {
	tile := &Tile{Textures: []string{string(make([]byte, maxNameLen+1))}}
	err := Encode(&bytes.Buffer{}, tile)
	assert.ErrorIs(t, err, ErrInvalidTileData)
}

func TestEncode_AlphaPlaneLimit(t *testing.T) {
	src := newSourceTile()
	withAlpha(&src.Chunks[0], maxAlphaPlanes+1)
	tile, err := Transcode(src, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, tile.Cells[0].AlphaPlanes, maxAlphaPlanes+1)

	var buf bytes.Buffer
	err = Encode(&buf, tile)
	assert.ErrorIs(t, err, ErrInvalidTileData)
	assert.Zero(t, buf.Len(), "nothing written for a rejected tile")

	path := filepath.Join(t.TempDir(), "wide.tile")
	assert.ErrorIs(t, WriteFile(path, tile), ErrInvalidTileData)
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+".tmp")
}

func TestEncodeDecode_MaxAlphaPlanes(t *testing.T) {
	src := newSourceTile()
	withAlpha(&src.Chunks[0], maxAlphaPlanes)
	tile, err := Transcode(src, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, tile))
	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Len(t, got.Cells[0].AlphaPlanes, maxAlphaPlanes)
}
