package formats

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/adtconv/pkg/pathname"
)

// MarshalBinary encodes the tile in the layout ParseADT reads.
// Chunk header offsets and sizes are recomputed from the chunk contents.
func (a *ADT) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)

	version := a.Version
	if version == 0 {
		version = ADTVersion
	}
	writeChunk(buf, "MVER", uint32Bytes(version))

	writeChunk(buf, "MTEX", joinNames(a.Textures))

	modelBlock, modelOfs := joinNamesAt(a.Models)
	writeChunk(buf, "MMDX", modelBlock)
	writeChunk(buf, "MMID", uint32Bytes(modelOfs...))

	wmoBlock, wmoOfs := joinNamesAt(a.WMOs)
	writeChunk(buf, "MWMO", wmoBlock)
	writeChunk(buf, "MWID", uint32Bytes(wmoOfs...))

	doodads := new(bytes.Buffer)
	if err := binary.Write(doodads, binary.LittleEndian, a.Doodads); err != nil {
		return nil, err
	}
	writeChunk(buf, "MDDF", doodads.Bytes())

	for i := range a.Chunks {
		mcnk, err := marshalADTChunk(&a.Chunks[i])
		if err != nil {
			return nil, err
		}
		writeChunk(buf, "MCNK", mcnk)
	}

	return buf.Bytes(), nil
}

// marshalADTChunk encodes the MCNK payload: header followed by sub-chunks.
func marshalADTChunk(c *ADTChunk) ([]byte, error) {
	hdr := c.Header
	body := new(bytes.Buffer)

	// Offsets count from the MCNK tag, so add the outer chunk and header sizes.
	base := uint32(adtSubHeaderSize + adtChunkHeaderSize)
	next := func() uint32 { return base + uint32(body.Len()) }

	hdr.OfsHeight = next()
	heights := new(bytes.Buffer)
	if err := binary.Write(heights, binary.LittleEndian, c.Heights); err != nil {
		return nil, err
	}
	writeChunk(body, "MCVT", heights.Bytes())

	hdr.NumLayers = uint32(len(c.Layers))
	hdr.OfsLayer = next()
	layers := new(bytes.Buffer)
	if err := binary.Write(layers, binary.LittleEndian, c.Layers); err != nil {
		return nil, err
	}
	writeChunk(body, "MCLY", layers.Bytes())

	hdr.OfsAlpha = next()
	hdr.SizeAlpha = uint32(adtSubHeaderSize + len(c.Alpha))
	writeChunk(body, "MCAL", c.Alpha)

	if c.HasLiquid {
		liquid := new(bytes.Buffer)
		if err := binary.Write(liquid, binary.LittleEndian, c.Liquid); err != nil {
			return nil, err
		}
		hdr.OfsLiquid = next()
		hdr.SizeLiquid = uint32(adtSubHeaderSize + liquid.Len())
		// Clients write a zero size here and rely on the header.
		writeTag(body, "MCLQ")
		binary.Write(body, binary.LittleEndian, uint32(0))
		body.Write(liquid.Bytes())
	} else {
		hdr.OfsLiquid = 0
		hdr.SizeLiquid = 0
	}

	out := new(bytes.Buffer)
	if err := binary.Write(out, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writeChunk(buf *bytes.Buffer, tag string, payload []byte) {
	writeTag(buf, tag)
	binary.Write(buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
}

func writeTag(buf *bytes.Buffer, tag string) {
	buf.Write([]byte{tag[3], tag[2], tag[1], tag[0]})
}

func uint32Bytes(values ...uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func joinNames(names []string) []byte {
	block, _ := joinNamesAt(names)
	return block
}

// joinNamesAt builds a NUL-terminated name block and the offset of each name.
func joinNamesAt(names []string) ([]byte, []uint32) {
	block := new(bytes.Buffer)
	offsets := make([]uint32, len(names))
	for i, name := range names {
		offsets[i] = uint32(block.Len())
		block.Write(pathname.Encode(name))
		block.WriteByte(0)
	}
	return block.Bytes(), offsets
}
