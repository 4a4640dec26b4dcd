// Package smf provides a codec for the Spring map file (SMF) terrain format.
package smf

import (
	"errors"
	"fmt"
)

// SMF format errors.
var (
	ErrInvalidMagic        = errors.New("invalid SMF magic: expected 'spring map file'")
	ErrTruncatedData       = errors.New("truncated SMF data")
	ErrBadDimensions       = errors.New("invalid SMF dimensions")
	ErrMissingHeightmap    = errors.New("heightmap section missing or out of file bounds")
	ErrHeightCountMismatch = errors.New("height count does not match map dimensions")
)

// Format constants.
const (
	Magic      = "spring map file"
	HeaderSize = 80

	// MiniMapSize is the fixed size of the compressed 1024x1024
	// minimap blob including its mip chain.
	MiniMapSize = 699048

	// ExtraHeaderGrass identifies the extra-header block that carries
	// the grass map offset.
	ExtraHeaderGrass = 1

	featureRecordSize = 24
)

// Header is the fixed 80-byte SMF file header (magic excluded).
// All scalar fields are little-endian on disk, in this order, directly
// after the 16-byte NUL-padded magic string.
type Header struct {
	Version         int32   // Expected 1; other values are tolerated with a warning
	ID              uint32  // Opaque map identifier
	Width           int32   // Map width in squares (vertices = Width+1)
	Length          int32   // Map length in squares (vertices = Length+1)
	SquareSize      int32   // World units per square
	TexelsPerSquare int32   // Texture resolution per square
	TileSize        int32   // Tile dimension in texels
	MinHeight       float32 // Quantization lower bound
	MaxHeight       float32 // Quantization upper bound
	OfsHeightMap    int32   // Section offsets; 0 = section absent
	OfsTypeMap      int32
	OfsTileIndex    int32
	OfsMiniMap      int32
	OfsMetalMap     int32
	OfsFeatures     int32
	NumExtraHeaders int32 // Chained {size,type,data} blocks after the header
}

// VertsX returns the number of height vertices along the X axis.
func (h *Header) VertsX() int { return int(h.Width) + 1 }

// VertsZ returns the number of height vertices along the Z axis.
func (h *Header) VertsZ() int { return int(h.Length) + 1 }

// HeightmapLen returns the number of height samples in the heightmap.
func (h *Header) HeightmapLen() int { return h.VertsX() * h.VertsZ() }

// WorldSize returns the map extent in world units.
func (h *Header) WorldSize() (width, length float32) {
	return float32(h.Width * h.SquareSize), float32(h.Length * h.SquareSize)
}

// Feature is a single feature (prop) placement record.
type Feature struct {
	Type         int32 // Index into the feature type name table
	X, Y, Z      float32
	Rotation     float32
	RelativeSize float32
}

// FeatureSet holds the decoded features section.
type FeatureSet struct {
	Declared  int32 // Feature count declared in the file
	TypeNames []string
	Features  []Feature // May be shorter than Declared if the file is truncated
}

// Map is a decoded SMF document. Optional sections are nil when absent
// or skipped during decode; Warnings records why.
type Map struct {
	Header     Header
	RawHeights []uint16  // Quantized height samples, row-major, z-major
	Heights    []float32 // Decoded world-unit heights

	MetalMap  []uint8 // (w/2)x(l/2), nil if absent
	TypeMap   []uint8 // (w/2)x(l/2), nil if absent
	TileIndex []int32 // (w/4)x(l/4), nil if absent
	MiniMap   []byte  // Fixed-size compressed blob, nil if absent
	GrassMap  []uint8 // (w/4)x(l/4), offset from the extra-header chain

	Features *FeatureSet

	Warnings []string
}

func (m *Map) warnf(format string, args ...any) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

// Dequantize maps a raw uint16 height sample to world units.
func Dequantize(v uint16, minHeight, maxHeight float32) float32 {
	return minHeight + float32(v)*(maxHeight-minHeight)/65535
}

// Quantize maps a world-unit height to a raw uint16 sample, clamped to
// the representable range.
func Quantize(f, minHeight, maxHeight float32) uint16 {
	span := maxHeight - minHeight
	if span <= 0 {
		return 0
	}
	v := float64(f-minHeight) * 65535 / float64(span)
	if v <= 0 {
		return 0
	}
	if v >= 65535 {
		return 65535
	}
	return uint16(v + 0.5)
}
