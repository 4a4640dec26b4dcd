// Package heightfield provides the in-memory terrain height grid shared
// by the SMF codec and the brush engine.
package heightfield

import (
	"github.com/mapforge/smfedit/pkg/smf"
)

// DefaultSegmentCeiling is the largest per-side segment count the edit
// and display resolution is allowed to reach before downsampling.
const DefaultSegmentCeiling = 512

// Grid is a dense row-major (z-major) float heightfield with its world
// scale. VertsX*VertsZ always equals len(Heights).
type Grid struct {
	Heights     []float32
	VertsX      int
	VertsZ      int
	WorldWidth  float32
	WorldLength float32
}

// New builds a Grid from explicit samples and world extent.
func New(heights []float32, vertsX, vertsZ int, worldWidth, worldLength float32) *Grid {
	return &Grid{
		Heights:     heights,
		VertsX:      vertsX,
		VertsZ:      vertsZ,
		WorldWidth:  worldWidth,
		WorldLength: worldLength,
	}
}

// FromMap builds a native-resolution Grid from a decoded SMF document.
func FromMap(m *smf.Map) *Grid {
	w, l := m.Header.WorldSize()
	return New(m.Heights, m.Header.VertsX(), m.Header.VertsZ(), w, l)
}

// At returns the height at vertex (x, z) without bounds checking.
func (g *Grid) At(x, z int) float32 {
	return g.Heights[z*g.VertsX+x]
}

// ChooseStride returns the smallest stride that keeps maxSegmentDim
// within the given ceiling. A ceiling <= 0 uses DefaultSegmentCeiling.
func ChooseStride(maxSegmentDim, ceiling int) int {
	if ceiling <= 0 {
		ceiling = DefaultSegmentCeiling
	}
	if maxSegmentDim <= ceiling {
		return 1
	}
	return (maxSegmentDim + ceiling - 1) / ceiling
}

// Downsample returns a strided nearest-sample view of the grid. It is
// deliberately unfiltered: output vertex (x, z) is the source vertex
// (x*stride, z*stride), so edit-resolution indices stay aligned with a
// deterministic subset of native indices. A stride <= 1 returns a copy
// at full resolution.
func (g *Grid) Downsample(stride int) *Grid {
	if stride <= 1 {
		return New(append([]float32(nil), g.Heights...), g.VertsX, g.VertsZ, g.WorldWidth, g.WorldLength)
	}
	outW := (g.VertsX-1)/stride + 1
	outL := (g.VertsZ-1)/stride + 1
	out := make([]float32, outW*outL)
	for z := 0; z < outL; z++ {
		for x := 0; x < outW; x++ {
			out[z*outW+x] = g.At(x*stride, z*stride)
		}
	}
	return New(out, outW, outL, g.WorldWidth, g.WorldLength)
}

// Rederive rebuilds float heights from raw quantized samples using an
// authoritative (min, max) pair, e.g. an override from map metadata.
// Applying it again with the same bounds yields identical values.
func Rederive(raw []uint16, minHeight, maxHeight float32) []float32 {
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = smf.Dequantize(v, minHeight, maxHeight)
	}
	return out
}

// HeightAt returns the bilinearly interpolated height at a world
// position. Coordinates are relative to the grid center; positions
// outside the grid clamp to the border.
func (g *Grid) HeightAt(worldX, worldZ float32) float32 {
	if g.VertsX < 2 || g.VertsZ < 2 {
		if len(g.Heights) > 0 {
			return g.Heights[0]
		}
		return 0
	}

	stepX := g.WorldWidth / float32(g.VertsX-1)
	stepZ := g.WorldLength / float32(g.VertsZ-1)
	fx := (worldX + g.WorldWidth/2) / stepX
	fz := (worldZ + g.WorldLength/2) / stepZ

	x0 := int(fx)
	z0 := int(fz)
	if x0 < 0 {
		x0 = 0
	}
	if z0 < 0 {
		z0 = 0
	}
	if x0 > g.VertsX-2 {
		x0 = g.VertsX - 2
	}
	if z0 > g.VertsZ-2 {
		z0 = g.VertsZ - 2
	}

	tx := clampf(fx-float32(x0), 0, 1)
	tz := clampf(fz-float32(z0), 0, 1)

	south := g.At(x0, z0)*(1-tx) + g.At(x0+1, z0)*tx
	north := g.At(x0, z0+1)*(1-tx) + g.At(x0+1, z0+1)*tx
	return south*(1-tz) + north*tz
}

// NearestVertexHeight returns the height at the grid vertex closest to
// a world position, clamped to the grid.
func (g *Grid) NearestVertexHeight(worldX, worldZ float32) float32 {
	if g.VertsX < 2 || g.VertsZ < 2 {
		if len(g.Heights) > 0 {
			return g.Heights[0]
		}
		return 0
	}
	stepX := g.WorldWidth / float32(g.VertsX-1)
	stepZ := g.WorldLength / float32(g.VertsZ-1)
	x := int((worldX+g.WorldWidth/2)/stepX + 0.5)
	z := int((worldZ+g.WorldLength/2)/stepZ + 0.5)
	x = clampi(x, 0, g.VertsX-1)
	z = clampi(z, 0, g.VertsZ-1)
	return g.At(x, z)
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampi(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
