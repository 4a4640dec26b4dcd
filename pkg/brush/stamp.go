package brush

import "math"

// Raster is a grayscale image used as a stamp source. Lum holds
// row-major luminance values in [0, 1].
type Raster struct {
	W, H int
	Lum  []float32
}

// RasterCache is the asynchronous image source the stamp brush polls.
// EnsureLoading schedules a decode and returns immediately; TryGet is a
// non-blocking poll. The stamp brush never blocks on the cache: until
// the raster resolves, each stroke is a deterministic no-op.
type RasterCache interface {
	TryGet(key string) (*Raster, bool)
	EnsureLoading(key string)
}

// Tiling policies for stamp UV sampling.
const (
	TilingClamp  = "clamp"
	TilingRepeat = "repeat"
)

// Sample returns the bilinearly interpolated luminance at (u, v) under
// the given tiling policy.
func (r *Raster) Sample(u, v float32, tiling string) float32 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}

	fx := u*float32(r.W) - 0.5
	fy := v*float32(r.H) - 0.5
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	v00 := r.texel(x0, y0, tiling)
	v10 := r.texel(x0+1, y0, tiling)
	v01 := r.texel(x0, y0+1, tiling)
	v11 := r.texel(x0+1, y0+1, tiling)

	top := v00*(1-tx) + v10*tx
	bot := v01*(1-tx) + v11*tx
	return top*(1-ty) + bot*ty
}

func (r *Raster) texel(x, y int, tiling string) float32 {
	if tiling == TilingRepeat {
		x = wrap(x, r.W)
		y = wrap(y, r.H)
	} else {
		x = clampIndex(x, r.W-1)
		y = clampIndex(y, r.H-1)
	}
	return r.Lum[y*r.W+x]
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// StampParams is the declarative schema of the image stamp brush.
func StampParams() []ParamDef {
	return []ParamDef{
		{Name: "source", Label: "Image Source", Type: ParamText, Text: &TextParam{}},
		{Name: "rotation", Label: "Rotation (deg)", Type: ParamNumber,
			Number: &NumberParam{Default: 0, Min: -360, Max: 360, Step: 1}},
		{Name: "uvScale", Label: "UV Scale", Type: ParamNumber,
			Number: &NumberParam{Default: 1, Min: 0.05, Max: 16, Step: 0.05}},
		{Name: "tiling", Label: "Tiling", Type: ParamSelect,
			Select: &SelectParam{Options: []string{TilingClamp, TilingRepeat}, Default: TilingClamp}},
		{Name: "centered", Label: "Centered (bipolar)", Type: ParamBoolean, Boolean: &BooleanParam{}},
		{Name: "heightScale", Label: "Height Scale", Type: ParamNumber,
			Number: &NumberParam{Default: 10, Min: -1000, Max: 1000, Step: 0.5}},
		{Name: "falloffPower", Label: "Falloff Power", Type: ParamNumber,
			Number: &NumberParam{Default: 1, Min: 0, Max: 8, Step: 0.1}},
	}
}

// NewStampBrush builds the image stamp brush over a raster cache. The
// stroke's local offsets are rotated, mapped into UV space, sampled
// bilinearly, and composed with the circular falloff:
//
//	u = 0.5 + (xr / (2*radius)) * uvScale
//	delta = lum' * heightScale * clamp01(strength) * falloff^power
//
// In centered mode lum' = lum - 0.5, enabling raise and lower from
// midgray. The brush is a no-op until the cache has the raster.
func NewStampBrush(cache RasterCache) Brush {
	return Brush{
		ID:     "stamp",
		Label:  "Image Stamp",
		Params: StampParams(),
		Apply: func(args ApplyArgs) []float32 {
			out := copyHeights(args.Heights)
			if degenerate(args) {
				return out
			}

			params, err := ValidateParams(StampParams(), args.Params)
			if err != nil {
				return out
			}
			key := stringParam(params, "source", "")
			if key == "" {
				return out
			}

			cache.EnsureLoading(key)
			raster, ok := cache.TryGet(key)
			if !ok {
				return out
			}

			rotation := numberParam(params, "rotation", 0) * math.Pi / 180
			uvScale := float32(numberParam(params, "uvScale", 1))
			tiling := stringParam(params, "tiling", TilingClamp)
			centered := boolParam(params, "centered", false)
			heightScale := float32(numberParam(params, "heightScale", 10))
			falloffPower := numberParam(params, "falloffPower", 1)

			sin := float32(math.Sin(rotation))
			cos := float32(math.Cos(rotation))
			blend := clamp01(args.Strength)

			strokeOffsets(args, func(idx int, dx, dz, w float32) {
				xr := dx*cos - dz*sin
				zr := dx*sin + dz*cos
				u := 0.5 + xr/(2*args.Radius)*uvScale
				v := 0.5 + zr/(2*args.Radius)*uvScale

				lum := raster.Sample(u, v, tiling)
				if centered {
					lum -= 0.5
				}

				weight := float32(math.Pow(float64(w), falloffPower))
				out[idx] += lum * heightScale * blend * weight
			})
			return out
		},
	}
}
