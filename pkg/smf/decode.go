package smf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Parse decodes an SMF file from raw bytes.
//
// Only the header and the heightmap are mandatory. Every optional
// section is validated independently against the file bounds; a section
// that does not fit is skipped and reported in Map.Warnings rather than
// failing the decode.
func Parse(data []byte) (*Map, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncatedData, len(data), HeaderSize)
	}

	// Magic is NUL-padded to 16 bytes. Only the text is compared, so a
	// file whose trailing padding byte is missing or nonzero still
	// parses.
	if string(data[:len(Magic)]) != Magic {
		return nil, ErrInvalidMagic
	}

	le := binary.LittleEndian
	h := Header{
		Version:         int32(le.Uint32(data[16:])),
		ID:              le.Uint32(data[20:]),
		Width:           int32(le.Uint32(data[24:])),
		Length:          int32(le.Uint32(data[28:])),
		SquareSize:      int32(le.Uint32(data[32:])),
		TexelsPerSquare: int32(le.Uint32(data[36:])),
		TileSize:        int32(le.Uint32(data[40:])),
		MinHeight:       math.Float32frombits(le.Uint32(data[44:])),
		MaxHeight:       math.Float32frombits(le.Uint32(data[48:])),
		OfsHeightMap:    int32(le.Uint32(data[52:])),
		OfsTypeMap:      int32(le.Uint32(data[56:])),
		OfsTileIndex:    int32(le.Uint32(data[60:])),
		OfsMiniMap:      int32(le.Uint32(data[64:])),
		OfsMetalMap:     int32(le.Uint32(data[68:])),
		OfsFeatures:     int32(le.Uint32(data[72:])),
		NumExtraHeaders: int32(le.Uint32(data[76:])),
	}

	if h.Width <= 0 || h.Length <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, h.Width, h.Length)
	}

	m := &Map{Header: h}

	if h.Version != 1 {
		m.warnf("unexpected SMF version %d (expected 1)", h.Version)
	}

	// Heightmap is the one mandatory section.
	hmLen := h.HeightmapLen()
	if !sectionFits(data, h.OfsHeightMap, hmLen*2) {
		return nil, fmt.Errorf("%w: offset %d, need %d bytes in %d-byte file",
			ErrMissingHeightmap, h.OfsHeightMap, hmLen*2, len(data))
	}
	m.RawHeights = make([]uint16, hmLen)
	m.Heights = make([]float32, hmLen)
	hm := data[h.OfsHeightMap:]
	for i := 0; i < hmLen; i++ {
		v := le.Uint16(hm[i*2:])
		m.RawHeights[i] = v
		m.Heights[i] = Dequantize(v, h.MinHeight, h.MaxHeight)
	}

	w, l := int(h.Width), int(h.Length)

	m.MetalMap = readByteSection(m, data, h.OfsMetalMap, (w/2)*(l/2), "metal map")
	m.TypeMap = readByteSection(m, data, h.OfsTypeMap, (w/2)*(l/2), "type map")

	if n := (w / 4) * (l / 4); sectionFits(data, h.OfsTileIndex, n*4) {
		m.TileIndex = make([]int32, n)
		ti := data[h.OfsTileIndex:]
		for i := 0; i < n; i++ {
			m.TileIndex[i] = int32(le.Uint32(ti[i*4:]))
		}
	} else if h.OfsTileIndex != 0 {
		m.warnf("tile index section out of file bounds, skipping")
	}

	if sectionFits(data, h.OfsMiniMap, MiniMapSize) {
		m.MiniMap = append([]byte(nil), data[h.OfsMiniMap:int(h.OfsMiniMap)+MiniMapSize]...)
	} else if h.OfsMiniMap != 0 {
		m.warnf("minimap section out of file bounds, skipping")
	}

	if ofs, ok := grassOffset(m, data, h.NumExtraHeaders); ok {
		m.GrassMap = readByteSection(m, data, ofs, (w/4)*(l/4), "grass map")
	}

	if h.OfsFeatures != 0 {
		m.Features = parseFeatures(m, data, h.OfsFeatures)
	}

	return m, nil
}

// ParseFile decodes an SMF file from disk.
func ParseFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SMF file: %w", err)
	}
	return Parse(data)
}

// sectionFits reports whether a section of the given extent lies fully
// inside the file. An offset of 0 means the section is absent.
func sectionFits(data []byte, offset int32, extent int) bool {
	return offset > 0 && extent >= 0 && int(offset)+extent <= len(data)
}

// readByteSection copies a fixed-extent byte section, or records a
// warning and returns nil when it does not fit.
func readByteSection(m *Map, data []byte, offset int32, extent int, name string) []uint8 {
	if !sectionFits(data, offset, extent) {
		if offset != 0 {
			m.warnf("%s section out of file bounds, skipping", name)
		}
		return nil
	}
	return append([]uint8(nil), data[offset:int(offset)+extent]...)
}

// grassOffset walks the extra-header chain looking for a grass block
// (type 1). Each block is {int32 size; int32 type; payload}. A
// malformed chain stops the walk with a warning; it never fails decode.
func grassOffset(m *Map, data []byte, count int32) (int32, bool) {
	le := binary.LittleEndian
	pos := HeaderSize
	for i := int32(0); i < count; i++ {
		if pos+8 > len(data) {
			m.warnf("extra header %d out of file bounds, stopping chain", i)
			return 0, false
		}
		size := int32(le.Uint32(data[pos:]))
		typ := int32(le.Uint32(data[pos+4:]))
		if size < 8 || pos+int(size) > len(data) {
			m.warnf("extra header %d has invalid size %d, stopping chain", i, size)
			return 0, false
		}
		if typ == ExtraHeaderGrass && size >= 12 {
			return int32(le.Uint32(data[pos+8:])), true
		}
		pos += int(size)
	}
	return 0, false
}

// parseFeatures decodes the features section. The section is
// truncation-tolerant: if the file holds fewer records than the header
// declares, only the records that fit are read and a warning is
// recorded.
func parseFeatures(m *Map, data []byte, offset int32) *FeatureSet {
	le := binary.LittleEndian
	if !sectionFits(data, offset, 8) {
		m.warnf("features section out of file bounds, skipping")
		return nil
	}
	pos := int(offset)
	numFeatures := int32(le.Uint32(data[pos:]))
	numTypes := int32(le.Uint32(data[pos+4:]))
	pos += 8

	if numFeatures < 0 || numTypes < 0 {
		m.warnf("features section declares negative counts, skipping")
		return nil
	}

	fs := &FeatureSet{Declared: numFeatures}

	// NUL-terminated type name strings.
	for i := int32(0); i < numTypes; i++ {
		end := bytes.IndexByte(data[pos:], 0)
		if end < 0 {
			m.warnf("features section truncated in type name %d", i)
			return fs
		}
		fs.TypeNames = append(fs.TypeNames, string(data[pos:pos+end]))
		pos += end + 1
	}

	avail := (len(data) - pos) / featureRecordSize
	n := int(numFeatures)
	if avail < n {
		m.warnf("features section declares %d records but only %d fit, reading %d", numFeatures, avail, avail)
		n = avail
	}

	fs.Features = make([]Feature, n)
	for i := 0; i < n; i++ {
		rec := data[pos+i*featureRecordSize:]
		fs.Features[i] = Feature{
			Type:         int32(le.Uint32(rec[0:])),
			X:            math.Float32frombits(le.Uint32(rec[4:])),
			Y:            math.Float32frombits(le.Uint32(rec[8:])),
			Z:            math.Float32frombits(le.Uint32(rec[12:])),
			Rotation:     math.Float32frombits(le.Uint32(rec[16:])),
			RelativeSize: math.Float32frombits(le.Uint32(rec[20:])),
		}
	}
	return fs
}
