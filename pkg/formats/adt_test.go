package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// createTestADT builds a tile with ramp heights, one layer per chunk and a
// couple of doodads.
func createTestADT() *ADT {
	adt := &ADT{
		Version:  ADTVersion,
		Textures: []string{"Tileset\\Elwynn\\Grass.blp", "Tileset\\Elwynn\\Dirt.blp"},
		Models:   []string{"World\\Generic\\Tree01.mdx", "World\\Generic\\Rock.mdx"},
		WMOs:     []string{"World\\wmo\\Tower.wmo"},
		Doodads: []ADTDoodad{
			{ModelID: 1, UniqueID: 7, Position: [3]float32{1024, 2048, 512}, Rotation: [3]float32{1, 2, 3}, Scale: 512, Flags: 2},
			{ModelID: 0, UniqueID: 8, Position: [3]float32{10, 20, 30}, Scale: 1024},
		},
	}

	for i := 0; i < ADTChunkCount; i++ {
		c := ADTChunk{
			Header: ADTChunkHeader{
				IndexX:     uint32(i % 16),
				IndexY:     uint32(i / 16),
				HeightBase: float32(i),
				XBase:      float32(100 + i),
				ZBase:      float32(200 + i),
			},
			Heights: make([]float32, ADTHeightSamples),
			Layers:  []ADTLayer{{TextureID: uint32(i % 2)}},
		}
		for j := range c.Heights {
			c.Heights[j] = float32(j)
		}
		adt.Chunks = append(adt.Chunks, c)
	}

	return adt
}

func TestParseADT_RoundTrip(t *testing.T) {
	src := createTestADT()
	src.Chunks[3].Layers = append(src.Chunks[3].Layers, ADTLayer{TextureID: 1, Flags: 0x100})
	src.Chunks[3].Alpha = bytes.Repeat([]byte{0xA5}, ADTAlphaMapSize)
	src.Chunks[5].HasLiquid = true
	src.Chunks[5].Liquid.Level = 42.5
	src.Chunks[5].Liquid.Vertices[80].Height = 43

	data, err := src.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	adt, err := ParseADT(data)
	if err != nil {
		t.Fatalf("ParseADT failed: %v", err)
	}

	if adt.Version != ADTVersion {
		t.Errorf("expected version %d, got %d", ADTVersion, adt.Version)
	}
	if len(adt.Chunks) != ADTChunkCount {
		t.Fatalf("expected %d chunks, got %d", ADTChunkCount, len(adt.Chunks))
	}
	if len(adt.Textures) != 2 || adt.Textures[1] != "Tileset\\Elwynn\\Dirt.blp" {
		t.Errorf("unexpected textures: %v", adt.Textures)
	}
	if len(adt.WMOs) != 1 {
		t.Errorf("expected 1 WMO, got %d", len(adt.WMOs))
	}

	c := adt.Chunks[17]
	if c.Header.HeightBase != 17 || c.Header.XBase != 117 || c.Header.ZBase != 217 {
		t.Errorf("chunk 17 bases: got h=%f x=%f z=%f", c.Header.HeightBase, c.Header.XBase, c.Header.ZBase)
	}
	if len(c.Heights) != ADTHeightSamples || c.Heights[144] != 144 {
		t.Errorf("chunk 17 heights not preserved")
	}

	layered := adt.Chunks[3]
	if layered.Header.NumLayers != 2 || len(layered.Layers) != 2 {
		t.Fatalf("expected 2 layers in chunk 3, got %d", len(layered.Layers))
	}
	if layered.Layers[1].Flags != 0x100 {
		t.Errorf("expected layer flags 0x100, got 0x%x", layered.Layers[1].Flags)
	}
	if layered.Header.SizeAlpha != 8+ADTAlphaMapSize {
		t.Errorf("expected alpha size %d, got %d", 8+ADTAlphaMapSize, layered.Header.SizeAlpha)
	}
	if plane := layered.AlphaPlane(0); len(plane) != ADTAlphaMapSize || plane[100] != 0xA5 {
		t.Errorf("alpha plane not preserved")
	}
	if layered.AlphaPlane(1) != nil {
		t.Error("AlphaPlane(1) should be nil with a single plane")
	}

	wet := adt.Chunks[5]
	if !wet.HasLiquid {
		t.Fatal("expected liquid in chunk 5")
	}
	if wet.Liquid.Level != 42.5 || wet.Liquid.Vertices[80].Height != 43 {
		t.Errorf("liquid not preserved: level=%f last=%f", wet.Liquid.Level, wet.Liquid.Vertices[80].Height)
	}
	if adt.Chunks[6].HasLiquid {
		t.Error("chunk 6 should have no liquid")
	}
}

func TestParseADT_DoodadModelIndex(t *testing.T) {
	data, err := createTestADT().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	adt, err := ParseADT(data)
	if err != nil {
		t.Fatalf("ParseADT failed: %v", err)
	}

	if len(adt.Doodads) != 2 {
		t.Fatalf("expected 2 doodads, got %d", len(adt.Doodads))
	}

	d := adt.Doodads[0]
	if d.ModelID != 1 {
		t.Errorf("expected model index 1, got %d", d.ModelID)
	}
	if adt.Models[d.ModelID] != "World\\Generic\\Rock.mdx" {
		t.Errorf("expected Rock.mdx, got %q", adt.Models[d.ModelID])
	}
	if d.Position != [3]float32{1024, 2048, 512} {
		t.Errorf("unexpected position %v", d.Position)
	}
	if d.Rotation != [3]float32{1, 2, 3} {
		t.Errorf("unexpected rotation %v", d.Rotation)
	}
	if d.Scale != 512 || d.Flags != 2 || d.UniqueID != 7 {
		t.Errorf("unexpected scale/flags/id: %d/%d/%d", d.Scale, d.Flags, d.UniqueID)
	}
}

// buildModelRefADT writes the top-level chunks of a tile with two models and
// one doodad using MMID entry nameID. MCNKs are left out.
func buildModelRefADT(mmid []uint32, nameID uint32, skip string) []byte {
	buf := new(bytes.Buffer)
	doodad := new(bytes.Buffer)
	binary.Write(doodad, binary.LittleEndian, ADTDoodad{ModelID: nameID, Scale: 1024})

	chunks := []struct {
		tag     string
		payload []byte
	}{
		{"MVER", uint32Bytes(ADTVersion)},
		{"MTEX", nil},
		{"MMDX", []byte("a.mdx\x00b.mdx\x00")},
		{"MMID", uint32Bytes(mmid...)},
		{"MWMO", nil},
		{"MWID", nil},
		{"MDDF", doodad.Bytes()},
	}
	for _, c := range chunks {
		if c.tag == skip {
			continue
		}
		writeChunk(buf, c.tag, c.payload)
	}
	return buf.Bytes()
}

func TestParseADT_ModelRefs(t *testing.T) {
	adt, err := ParseADT(buildModelRefADT([]uint32{0, 6}, 1, ""))
	if err != nil {
		t.Fatalf("ParseADT failed: %v", err)
	}
	if got := adt.Doodads[0].ModelID; got != 1 {
		t.Errorf("expected model index 1, got %d", got)
	}
	if adt.Models[1] != "b.mdx" {
		t.Errorf("expected b.mdx, got %q", adt.Models[1])
	}
}

func TestParseADT_InvalidModelRef(t *testing.T) {
	tests := []struct {
		name   string
		mmid   []uint32
		nameID uint32
	}{
		{"id past MMID table", []uint32{0}, 1},
		{"offset inside a name", []uint32{0, 3}, 1},
		{"offset past name block", []uint32{0, 64}, 1},
		{"empty MMID table", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseADT(buildModelRefADT(tt.mmid, tt.nameID, ""))
			if !errors.Is(err, ErrInvalidModelRef) {
				t.Errorf("expected ErrInvalidModelRef, got %v", err)
			}
		})
	}
}

func TestParseADT_MissingRequiredChunk(t *testing.T) {
	for _, tag := range []string{"MTEX", "MMDX", "MMID", "MWMO", "MWID", "MDDF"} {
		t.Run(tag, func(t *testing.T) {
			_, err := ParseADT(buildModelRefADT([]uint32{0, 6}, 1, tag))
			if !errors.Is(err, ErrMissingChunk) {
				t.Errorf("expected ErrMissingChunk without %s, got %v", tag, err)
			}
		})
	}
}

func TestParseADT_InvalidMagic(t *testing.T) {
	data := []byte("XXXX\x04\x00\x00\x00\x12\x00\x00\x00")

	_, err := ParseADT(data)
	if !errors.Is(err, ErrInvalidADTMagic) {
		t.Errorf("expected ErrInvalidADTMagic, got %v", err)
	}
}

func TestParseADT_UnsupportedVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.WriteString("REVM")
	binary.Write(buf, binary.LittleEndian, uint32(4))
	binary.Write(buf, binary.LittleEndian, uint32(23))

	_, err := ParseADT(buf.Bytes())
	if !errors.Is(err, ErrUnsupportedADTVersion) {
		t.Errorf("expected ErrUnsupportedADTVersion, got %v", err)
	}
}

func TestParseADT_TruncatedData(t *testing.T) {
	if _, err := ParseADT([]byte("REVM")); err == nil {
		t.Error("expected error for truncated data")
	}

	data, err := createTestADT().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	_, err = ParseADT(data[:len(data)-10])
	if !errors.Is(err, ErrTruncatedADTData) {
		t.Errorf("expected ErrTruncatedADTData, got %v", err)
	}
}

func TestParseADT_WrongSubChunkTag(t *testing.T) {
	data, err := createTestADT().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}

	// Corrupt the first MCVT tag.
	idx := bytes.Index(data, []byte("TVCM"))
	if idx < 0 {
		t.Fatal("MCVT tag not found")
	}
	copy(data[idx:], "XXXX")

	_, err = ParseADT(data)
	if !errors.Is(err, ErrMissingChunk) {
		t.Errorf("expected ErrMissingChunk, got %v", err)
	}
}

func TestADT_GetHeightRange(t *testing.T) {
	adt := &ADT{
		Chunks: []ADTChunk{
			{Header: ADTChunkHeader{HeightBase: 10}, Heights: []float32{-5, 0, 5}},
			{Header: ADTChunkHeader{HeightBase: -20}, Heights: []float32{1, 2}},
		},
	}

	min, max := adt.GetHeightRange()
	if min != -19 {
		t.Errorf("expected min -19, got %f", min)
	}
	if max != 15 {
		t.Errorf("expected max 15, got %f", max)
	}
}

func TestADT_GetHeightRange_Empty(t *testing.T) {
	adt := &ADT{}
	min, max := adt.GetHeightRange()
	if min != 0 || max != 0 {
		t.Errorf("expected (0, 0) for empty ADT, got (%f, %f)", min, max)
	}
}

func TestADT_CountLayers(t *testing.T) {
	adt := createTestADT()
	if got := adt.CountLayers(); got != ADTChunkCount {
		t.Errorf("expected %d layers, got %d", ADTChunkCount, got)
	}
}
