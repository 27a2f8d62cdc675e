package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/adtconv/pkg/pathname"
)

// ADT format errors.
var (
	ErrInvalidADTMagic       = errors.New("invalid ADT magic: expected 'MVER'")
	ErrUnsupportedADTVersion = errors.New("unsupported ADT version")
	ErrTruncatedADTData      = errors.New("truncated ADT data")
	ErrMissingChunk          = errors.New("missing ADT chunk")
	ErrInvalidModelRef       = errors.New("doodad model reference does not name a model")
)

// requiredChunks are the top-level chunks every tile must carry.
var requiredChunks = []string{"MVER", "MTEX", "MMDX", "MMID", "MWMO", "MWID", "MDDF"}

// ADT layout constants.
const (
	ADTVersion         = 18
	ADTChunkCount      = 256 // MCNK chunks per tile
	ADTHeightSamples   = 145 // 9*9 + 8*8 interleaved
	ADTLiquidVertices  = 81  // 9*9
	ADTAlphaMapSize    = 2048
	adtChunkHeaderSize = 128
	adtLayerSize       = 16
	adtDoodadSize      = 36
	adtSubHeaderSize   = 8
)

// ADTChunkHeader is the fixed 128-byte header of an MCNK chunk.
// Offsets are relative to the start of the MCNK chunk including its tag.
type ADTChunkHeader struct {
	Flags             uint32
	IndexX            uint32
	IndexY            uint32
	NumLayers         uint32
	NumDoodadRefs     uint32
	OfsHeight         uint32
	OfsNormal         uint32
	OfsLayer          uint32
	OfsRefs           uint32
	OfsAlpha          uint32
	SizeAlpha         uint32 // includes the 8-byte MCAL header
	OfsShadow         uint32
	SizeShadow        uint32
	AreaID            uint32
	NumMapObjRefs     uint32
	Holes             uint16
	Pad               uint16
	LowQualityTexture [16]byte
	PredTex           uint32
	NoEffectDoodad    uint32
	OfsSndEmitters    uint32
	NumSndEmitters    uint32
	OfsLiquid         uint32
	SizeLiquid        uint32
	HeightBase        float32 // vertical axis
	XBase             float32 // ground axis
	ZBase             float32 // ground axis
	OfsMCCV           uint32
	OfsMCLV           uint32
	Unused            uint32
}

// ADTLayer is one texture layer of a chunk (MCLY record).
type ADTLayer struct {
	TextureID uint32 // index into ADT.Textures
	Flags     uint32
	OfsAlpha  uint32
	EffectID  uint32
}

// ADTLiquidVertex is one vertex of the legacy MCLQ liquid grid.
type ADTLiquidVertex struct {
	Light  uint32
	Height float32
}

// ADTLiquid is the legacy per-chunk liquid block (MCLQ).
type ADTLiquid struct {
	Level    float32 // base water level
	MaxLevel float32
	Vertices [ADTLiquidVertices]ADTLiquidVertex
	Flags    [64]uint8
}

// ADTChunk is one of the 256 terrain cells of a tile.
type ADTChunk struct {
	Header    ADTChunkHeader
	Heights   []float32 // interleaved 9/8 rows, relative to Header.HeightBase
	Layers    []ADTLayer
	Alpha     []byte // packed 4-bit planes, ADTAlphaMapSize bytes each
	Liquid    ADTLiquid
	HasLiquid bool
}

// AlphaPlane returns the packed alpha plane i, or nil if it is not present.
func (c *ADTChunk) AlphaPlane(i int) []byte {
	start := i * ADTAlphaMapSize
	end := start + ADTAlphaMapSize
	if i < 0 || end > len(c.Alpha) {
		return nil
	}
	return c.Alpha[start:end]
}

// ADTDoodad is a static model placement (MDDF record).
type ADTDoodad struct {
	ModelID  uint32     // index into ADT.Models
	UniqueID uint32     // map-wide instance id
	Position [3]float32 // x, y (height), z
	Rotation [3]float32 // a, b, c
	Scale    uint16     // 1024 = 1.0
	Flags    uint16
}

// ADT represents a parsed terrain tile.
type ADT struct {
	Version  uint32
	Textures []string
	Models   []string
	WMOs     []string
	Doodads  []ADTDoodad
	Chunks   []ADTChunk
}

// ParseADT parses an ADT file from raw bytes.
func ParseADT(data []byte) (*ADT, error) {
	if len(data) < adtSubHeaderSize+4 {
		return nil, ErrTruncatedADTData
	}
	if readTag(data) != "MVER" {
		return nil, ErrInvalidADTMagic
	}

	adt := &ADT{}
	seen := make(map[string]bool, len(requiredChunks))
	var (
		modelOfs    []uint32
		modelBlock  []byte
		wmoBlock    []byte
		rawDoodads  []byte
	)

	offset := 0
	for offset < len(data) {
		if offset+adtSubHeaderSize > len(data) {
			return nil, fmt.Errorf("%w: chunk header at %d", ErrTruncatedADTData, offset)
		}
		tag := readTag(data[offset:])
		size := int(binary.LittleEndian.Uint32(data[offset+4:]))
		end := offset + adtSubHeaderSize + size
		if end > len(data) {
			return nil, fmt.Errorf("%w: %s chunk at %d", ErrTruncatedADTData, tag, offset)
		}
		payload := data[offset+adtSubHeaderSize : end]
		seen[tag] = true

		switch tag {
		case "MVER":
			if size < 4 {
				return nil, fmt.Errorf("%w: reading version", ErrTruncatedADTData)
			}
			adt.Version = binary.LittleEndian.Uint32(payload)
			if adt.Version != ADTVersion {
				return nil, fmt.Errorf("%w: %d", ErrUnsupportedADTVersion, adt.Version)
			}
		case "MTEX":
			adt.Textures = splitNames(payload)
		case "MMDX":
			modelBlock = payload
		case "MMID":
			modelOfs = readUint32s(payload)
		case "MWMO":
			wmoBlock = payload
		case "MDDF":
			rawDoodads = payload
		case "MCNK":
			chunk, err := parseADTChunk(data[offset:end])
			if err != nil {
				return nil, fmt.Errorf("parsing chunk %d: %w", len(adt.Chunks), err)
			}
			adt.Chunks = append(adt.Chunks, chunk)
		}

		offset = end
	}

	for _, tag := range requiredChunks {
		if !seen[tag] {
			return nil, fmt.Errorf("%w: %s", ErrMissingChunk, tag)
		}
	}

	var modelIndex map[uint32]uint32
	adt.Models, modelIndex = splitNamesAt(modelBlock)
	adt.WMOs = splitNames(wmoBlock)

	doodads, err := parseADTDoodads(rawDoodads, modelOfs, modelIndex)
	if err != nil {
		return nil, err
	}
	adt.Doodads = doodads

	return adt, nil
}

// ParseADTFile parses an ADT file from disk.
func ParseADTFile(path string) (*ADT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ADT file: %w", err)
	}
	return ParseADT(data)
}

// parseADTChunk parses one MCNK chunk, tag and size included.
func parseADTChunk(mcnk []byte) (ADTChunk, error) {
	var chunk ADTChunk

	if len(mcnk) < adtSubHeaderSize+adtChunkHeaderSize {
		return ADTChunk{}, fmt.Errorf("%w: MCNK header", ErrTruncatedADTData)
	}
	r := bytes.NewReader(mcnk[adtSubHeaderSize : adtSubHeaderSize+adtChunkHeaderSize])
	if err := binary.Read(r, binary.LittleEndian, &chunk.Header); err != nil {
		return ADTChunk{}, fmt.Errorf("%w: MCNK header", ErrTruncatedADTData)
	}
	hdr := &chunk.Header

	// Heights
	mcvt, err := subChunk(mcnk, hdr.OfsHeight, "MCVT")
	if err != nil {
		return ADTChunk{}, err
	}
	if mcvt == nil {
		return ADTChunk{}, fmt.Errorf("%w: MCVT", ErrMissingChunk)
	}
	chunk.Heights = make([]float32, len(mcvt)/4)
	if err := binary.Read(bytes.NewReader(mcvt), binary.LittleEndian, chunk.Heights); err != nil {
		return ADTChunk{}, fmt.Errorf("%w: reading heights", ErrTruncatedADTData)
	}

	// Texture layers
	if hdr.NumLayers > 0 {
		mcly, err := subChunk(mcnk, hdr.OfsLayer, "MCLY")
		if err != nil {
			return ADTChunk{}, err
		}
		if len(mcly) < int(hdr.NumLayers)*adtLayerSize {
			return ADTChunk{}, fmt.Errorf("%w: %d layers in %d bytes", ErrTruncatedADTData, hdr.NumLayers, len(mcly))
		}
		chunk.Layers = make([]ADTLayer, hdr.NumLayers)
		if err := binary.Read(bytes.NewReader(mcly), binary.LittleEndian, chunk.Layers); err != nil {
			return ADTChunk{}, fmt.Errorf("%w: reading layers", ErrTruncatedADTData)
		}
	}

	// Alpha maps
	if hdr.SizeAlpha > adtSubHeaderSize {
		mcal, err := subChunk(mcnk, hdr.OfsAlpha, "MCAL")
		if err != nil {
			return ADTChunk{}, err
		}
		chunk.Alpha = mcal
	}

	// Liquid. The MCLQ size field is unreliable, the header carries the real size.
	if hdr.OfsLiquid != 0 && hdr.SizeLiquid > adtSubHeaderSize {
		start := int(hdr.OfsLiquid)
		end := start + int(hdr.SizeLiquid)
		if end > len(mcnk) {
			return ADTChunk{}, fmt.Errorf("%w: MCLQ", ErrTruncatedADTData)
		}
		if readTag(mcnk[start:]) != "MCLQ" {
			return ADTChunk{}, fmt.Errorf("%w: expected MCLQ at %d", ErrMissingChunk, start)
		}
		liquid, err := parseADTLiquid(mcnk[start+adtSubHeaderSize : end])
		if err != nil {
			return ADTChunk{}, err
		}
		chunk.Liquid = liquid
		chunk.HasLiquid = true
	}

	return chunk, nil
}

// parseADTLiquid parses the body of an MCLQ block.
func parseADTLiquid(data []byte) (ADTLiquid, error) {
	var liquid ADTLiquid

	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &liquid.Level); err != nil {
		return ADTLiquid{}, fmt.Errorf("%w: reading liquid level", ErrTruncatedADTData)
	}
	if err := binary.Read(r, binary.LittleEndian, &liquid.MaxLevel); err != nil {
		return ADTLiquid{}, fmt.Errorf("%w: reading liquid max level", ErrTruncatedADTData)
	}
	if err := binary.Read(r, binary.LittleEndian, &liquid.Vertices); err != nil {
		return ADTLiquid{}, fmt.Errorf("%w: reading liquid vertices", ErrTruncatedADTData)
	}
	// Tile flags are optional in truncated blocks.
	_, _ = r.Read(liquid.Flags[:])

	return liquid, nil
}

// parseADTDoodads parses MDDF records and maps their MMID indices to model
// indices. Every doodad must name a model through MMID.
func parseADTDoodads(data []byte, modelOfs []uint32, modelIndex map[uint32]uint32) ([]ADTDoodad, error) {
	if len(data)%adtDoodadSize != 0 {
		return nil, fmt.Errorf("%w: MDDF size %d", ErrTruncatedADTData, len(data))
	}

	doodads := make([]ADTDoodad, len(data)/adtDoodadSize)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, doodads); err != nil {
		return nil, fmt.Errorf("%w: reading doodads", ErrTruncatedADTData)
	}

	for i := range doodads {
		id := doodads[i].ModelID
		if int(id) >= len(modelOfs) {
			return nil, fmt.Errorf("%w: doodad %d uses MMID entry %d of %d", ErrInvalidModelRef, i, id, len(modelOfs))
		}
		idx, ok := modelIndex[modelOfs[id]]
		if !ok {
			return nil, fmt.Errorf("%w: doodad %d MMID offset %d is not the start of a name", ErrInvalidModelRef, i, modelOfs[id])
		}
		doodads[i].ModelID = idx
	}

	return doodads, nil
}

// subChunk returns the payload of the sub-chunk at ofs, checking its tag.
// A zero offset means the sub-chunk is absent.
func subChunk(mcnk []byte, ofs uint32, tag string) ([]byte, error) {
	if ofs == 0 {
		return nil, nil
	}
	start := int(ofs)
	if start+adtSubHeaderSize > len(mcnk) {
		return nil, fmt.Errorf("%w: %s header", ErrTruncatedADTData, tag)
	}
	if got := readTag(mcnk[start:]); got != tag {
		return nil, fmt.Errorf("%w: expected %s at %d, found %q", ErrMissingChunk, tag, start, got)
	}
	size := int(binary.LittleEndian.Uint32(mcnk[start+4:]))
	end := start + adtSubHeaderSize + size
	if end > len(mcnk) {
		return nil, fmt.Errorf("%w: %s payload", ErrTruncatedADTData, tag)
	}
	return mcnk[start+adtSubHeaderSize : end], nil
}

// readTag reads a chunk tag. Tags are stored byte-reversed on disk.
func readTag(data []byte) string {
	return string([]byte{data[3], data[2], data[1], data[0]})
}

// splitNames splits a block of NUL-terminated names.
func splitNames(block []byte) []string {
	names, _ := splitNamesAt(block)
	return names
}

// splitNamesAt splits a name block and maps each name's byte offset within
// the block to its position in the returned list.
func splitNamesAt(block []byte) ([]string, map[uint32]uint32) {
	var names []string
	index := make(map[uint32]uint32)

	pos := 0
	for pos < len(block) {
		index[uint32(pos)] = uint32(len(names))
		idx := bytes.IndexByte(block[pos:], 0)
		if idx < 0 {
			names = append(names, pathname.Decode(block[pos:]))
			break
		}
		names = append(names, pathname.Decode(block[pos:pos+idx]))
		pos += idx + 1
	}
	return names, index
}

func readUint32s(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

// CountLayers returns the total number of texture layers over all chunks.
func (a *ADT) CountLayers() int {
	n := 0
	for i := range a.Chunks {
		n += len(a.Chunks[i].Layers)
	}
	return n
}

// GetHeightRange returns the minimum and maximum absolute terrain height.
func (a *ADT) GetHeightRange() (min, max float32) {
	first := true
	for i := range a.Chunks {
		base := a.Chunks[i].Header.HeightBase
		for _, h := range a.Chunks[i].Heights {
			z := base + h
			if first || z < min {
				min = z
			}
			if first || z > max {
				max = z
			}
			first = false
		}
	}
	return min, max
}
