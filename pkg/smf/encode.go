package smf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// FlatSpec describes a minimal map with a uniform height, encoded with
// a header and heightmap only.
type FlatSpec struct {
	Width, Length   int32
	SquareSize      int32 // 0 = default 8
	TexelsPerSquare int32 // 0 = default 8
	TileSize        int32 // 0 = default 32
	MinHeight       float32
	MaxHeight       float32
	FlatHeightU16   uint16 // Raw sample written to every vertex
}

// BuildSpec describes a fresh map built from an explicit float
// heightfield. Zero-filled stub sections are emitted for the metal map,
// type map and minimap, plus an empty features section, so downstream
// loaders see well-formed if empty data.
type BuildSpec struct {
	Width, Length   int32
	SquareSize      int32 // 0 = default 8
	TexelsPerSquare int32 // 0 = default 8
	TileSize        int32 // 0 = default 32
	MinHeight       float32 // If MinHeight == MaxHeight, bounds are derived from Heights
	MaxHeight       float32
	Heights         []float32 // Must be (Width+1)*(Length+1) samples
}

// HeaderPatch carries optional header overrides for
// PatchHeightsAndHeader. Nil fields keep the original value.
type HeaderPatch struct {
	MinHeight *float32
	MaxHeight *float32
}

// EncodeFlat builds an SMF file containing only the header and a
// uniform heightmap. All optional section offsets are zero.
func EncodeFlat(spec FlatSpec) ([]byte, error) {
	if spec.Width <= 0 || spec.Length <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, spec.Width, spec.Length)
	}
	h := newHeader(spec.Width, spec.Length, spec.SquareSize, spec.TexelsPerSquare, spec.TileSize,
		spec.MinHeight, spec.MaxHeight)
	h.OfsHeightMap = HeaderSize

	buf := make([]byte, HeaderSize+h.HeightmapLen()*2)
	writeHeader(buf, &h)
	le := binary.LittleEndian
	for i := 0; i < h.HeightmapLen(); i++ {
		le.PutUint16(buf[HeaderSize+i*2:], spec.FlatHeightU16)
	}
	return buf, nil
}

// EncodeWithStubs builds an SMF file from a float heightfield with
// zero-filled stub sections for the metal map, type map and minimap,
// and an empty features section.
func EncodeWithStubs(spec BuildSpec) ([]byte, error) {
	if spec.Width <= 0 || spec.Length <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, spec.Width, spec.Length)
	}
	h := newHeader(spec.Width, spec.Length, spec.SquareSize, spec.TexelsPerSquare, spec.TileSize,
		spec.MinHeight, spec.MaxHeight)
	if len(spec.Heights) != h.HeightmapLen() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrHeightCountMismatch, len(spec.Heights), h.HeightmapLen())
	}
	if h.MinHeight == h.MaxHeight {
		h.MinHeight, h.MaxHeight = heightBounds(spec.Heights)
	}

	w, l := int(h.Width), int(h.Length)
	heightmapLen := h.HeightmapLen() * 2
	halfMapLen := (w / 2) * (l / 2)

	ofs := int32(HeaderSize)
	h.OfsHeightMap = ofs
	ofs += int32(heightmapLen)
	h.OfsTypeMap = ofs
	ofs += int32(halfMapLen)
	h.OfsMetalMap = ofs
	ofs += int32(halfMapLen)
	h.OfsMiniMap = ofs
	ofs += MiniMapSize
	h.OfsFeatures = ofs
	ofs += 8 // numFeatures=0, numTypes=0

	buf := make([]byte, ofs)
	writeHeader(buf, &h)
	writeQuantized(buf[h.OfsHeightMap:], spec.Heights, h.MinHeight, h.MaxHeight)
	// Stub sections and the empty features counts are already zero.
	return buf, nil
}

// PatchHeights re-quantizes a float heightfield into a copy of the
// original file, leaving every byte outside the heightmap region
// untouched. Quantization bounds come from the original header.
func PatchHeights(orig []byte, heights []float32) ([]byte, error) {
	return PatchHeightsAndHeader(orig, heights, HeaderPatch{})
}

// PatchHeightsAndHeader is PatchHeights with optional rewrites of the
// header's MinHeight/MaxHeight quantization bounds.
func PatchHeightsAndHeader(orig []byte, heights []float32, patch HeaderPatch) ([]byte, error) {
	m, err := Parse(orig)
	if err != nil {
		return nil, err
	}
	if len(heights) != m.Header.HeightmapLen() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrHeightCountMismatch, len(heights), m.Header.HeightmapLen())
	}

	minH, maxH := m.Header.MinHeight, m.Header.MaxHeight
	if patch.MinHeight != nil {
		minH = *patch.MinHeight
	}
	if patch.MaxHeight != nil {
		maxH = *patch.MaxHeight
	}

	out := append([]byte(nil), orig...)
	le := binary.LittleEndian
	if patch.MinHeight != nil {
		le.PutUint32(out[44:], math.Float32bits(minH))
	}
	if patch.MaxHeight != nil {
		le.PutUint32(out[48:], math.Float32bits(maxH))
	}
	writeQuantized(out[m.Header.OfsHeightMap:], heights, minH, maxH)
	return out, nil
}

func newHeader(width, length, squareSize, texelsPerSquare, tileSize int32, minH, maxH float32) Header {
	if squareSize <= 0 {
		squareSize = 8
	}
	if texelsPerSquare <= 0 {
		texelsPerSquare = 8
	}
	if tileSize <= 0 {
		tileSize = 32
	}
	return Header{
		Version:         1,
		Width:           width,
		Length:          length,
		SquareSize:      squareSize,
		TexelsPerSquare: texelsPerSquare,
		TileSize:        tileSize,
		MinHeight:       minH,
		MaxHeight:       maxH,
	}
}

func writeHeader(buf []byte, h *Header) {
	copy(buf[0:16], Magic) // Remaining magic bytes stay NUL
	le := binary.LittleEndian
	le.PutUint32(buf[16:], uint32(h.Version))
	le.PutUint32(buf[20:], h.ID)
	le.PutUint32(buf[24:], uint32(h.Width))
	le.PutUint32(buf[28:], uint32(h.Length))
	le.PutUint32(buf[32:], uint32(h.SquareSize))
	le.PutUint32(buf[36:], uint32(h.TexelsPerSquare))
	le.PutUint32(buf[40:], uint32(h.TileSize))
	le.PutUint32(buf[44:], math.Float32bits(h.MinHeight))
	le.PutUint32(buf[48:], math.Float32bits(h.MaxHeight))
	le.PutUint32(buf[52:], uint32(h.OfsHeightMap))
	le.PutUint32(buf[56:], uint32(h.OfsTypeMap))
	le.PutUint32(buf[60:], uint32(h.OfsTileIndex))
	le.PutUint32(buf[64:], uint32(h.OfsMiniMap))
	le.PutUint32(buf[68:], uint32(h.OfsMetalMap))
	le.PutUint32(buf[72:], uint32(h.OfsFeatures))
	le.PutUint32(buf[76:], uint32(h.NumExtraHeaders))
}

func writeQuantized(dst []byte, heights []float32, minH, maxH float32) {
	le := binary.LittleEndian
	for i, f := range heights {
		le.PutUint16(dst[i*2:], Quantize(f, minH, maxH))
	}
}

func heightBounds(heights []float32) (minH, maxH float32) {
	minH, maxH = heights[0], heights[0]
	for _, h := range heights[1:] {
		if h < minH {
			minH = h
		}
		if h > maxH {
			maxH = h
		}
	}
	return minH, maxH
}
