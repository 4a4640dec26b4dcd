package brush

import "math"

// Builtins returns the built-in brush set. The registry is assembled
// explicitly from this list at startup; there is no ambient discovery.
func Builtins() []Brush {
	return []Brush{
		{ID: "raise", Label: "Raise", Apply: applyRaise(1, false)},
		{ID: "lower", Label: "Lower", Apply: applyRaise(-1, false)},
		{ID: "raise-square", Label: "Raise (Square)", Apply: applyRaise(1, true)},
		{ID: "lower-square", Label: "Lower (Square)", Apply: applyRaise(-1, true)},
		{ID: "smooth", Label: "Smooth", Apply: applySmooth},
		{ID: "blend", Label: "Blend", Apply: applyBlend},
		{ID: "flatten", Label: "Flatten", Apply: applyTarget(targetFlatten, false)},
		{ID: "level", Label: "Level", Apply: applyTarget(targetFlatten, true)},
		{ID: "fill", Label: "Fill", Apply: applyTarget(targetFill, false)},
		{ID: "drain", Label: "Drain", Apply: applyTarget(targetDrain, false)},
		{ID: "erode", Label: "Erode", Apply: applyNeighborhood(neighborhoodMin)},
		{ID: "dilate", Label: "Dilate", Apply: applyNeighborhood(neighborhoodMax)},
		{ID: "terrace", Label: "Terrace", Apply: applyTerrace},
		{ID: "noise", Label: "Noise", Apply: applyNoise},
		{ID: "sharpen", Label: "Sharpen", Apply: applySharpen},
	}
}

// applyRaise builds the raise/lower kernels: a world-unit delta of
// |strength| at the stroke center, scaled by falloff. The square
// variants use a Chebyshev footprint.
func applyRaise(sign float32, chebyshev bool) func(ApplyArgs) []float32 {
	return func(args ApplyArgs) []float32 {
		out := copyHeights(args.Heights)
		if degenerate(args) {
			return out
		}
		delta := args.Strength
		if delta < 0 {
			delta = -delta
		}
		delta *= sign
		forEachAffected(args, chebyshev, func(idx int, w float32) {
			out[idx] += delta * w
		})
		return out
	}
}

// applySmooth blends each affected vertex toward its 3x3-neighborhood
// average. Strength is the blend factor in [0,1], scaled by falloff.
func applySmooth(args ApplyArgs) []float32 {
	out := copyHeights(args.Heights)
	if degenerate(args) {
		return out
	}
	s := clamp01(args.Strength)
	forEachAffected(args, false, func(idx int, w float32) {
		avg := neighborhoodAvg(args.Heights, args.VertsX, args.VertsZ, idx)
		out[idx] += (avg - out[idx]) * s * w
	})
	return out
}

// applyBlend is two sequential smooth passes at the same strength.
func applyBlend(args ApplyArgs) []float32 {
	first := applySmooth(args)
	second := args
	second.Heights = first
	return applySmooth(second)
}

type targetFunc func(h, target float32) float32

func targetFlatten(h, target float32) float32 { return target }

// targetFill never lowers terrain.
func targetFill(h, target float32) float32 {
	if h > target {
		return h
	}
	return target
}

// targetDrain never raises terrain.
func targetDrain(h, target float32) float32 {
	if h < target {
		return h
	}
	return target
}

// applyTarget builds the flatten, level, fill and drain kernels: each
// blends toward a target elevation taken from HitY, or from the grid
// vertex nearest the stroke center. Level treats strength <= 0 as a
// hard set (blend factor 1).
func applyTarget(pick targetFunc, hardDefault bool) func(ApplyArgs) []float32 {
	return func(args ApplyArgs) []float32 {
		out := copyHeights(args.Heights)
		if degenerate(args) {
			return out
		}
		s := clamp01(args.Strength)
		if hardDefault && args.Strength <= 0 {
			s = 1
		}
		target := targetElevation(args)
		forEachAffected(args, false, func(idx int, w float32) {
			t := pick(out[idx], target)
			out[idx] += (t - out[idx]) * s * w
		})
		return out
	}
}

// targetElevation resolves the stroke's target height: the surface
// height under the cursor when the host supplied it, else the nearest
// grid vertex to the stroke center.
func targetElevation(args ApplyArgs) float32 {
	if args.HitY != nil {
		return *args.HitY
	}
	stepX := args.WorldWidth / float32(args.VertsX-1)
	stepZ := args.WorldLength / float32(args.VertsZ-1)
	x := clampIndex(int((args.CenterX+args.WorldWidth/2)/stepX+0.5), args.VertsX-1)
	z := clampIndex(int((args.CenterZ+args.WorldLength/2)/stepZ+0.5), args.VertsZ-1)
	return args.Heights[z*args.VertsX+x]
}

type neighborhoodFunc func(heights []float32, vertsX, vertsZ, idx int) float32

// applyNeighborhood builds the erode/dilate kernels: blend toward the
// local 3x3 min or max.
func applyNeighborhood(pick neighborhoodFunc) func(ApplyArgs) []float32 {
	return func(args ApplyArgs) []float32 {
		out := copyHeights(args.Heights)
		if degenerate(args) {
			return out
		}
		s := clamp01(args.Strength)
		forEachAffected(args, false, func(idx int, w float32) {
			t := pick(args.Heights, args.VertsX, args.VertsZ, idx)
			out[idx] += (t - out[idx]) * s * w
		})
		return out
	}
}

// applyTerrace quantizes heights to multiples of the step size.
// Strength is the step in world units (8 when not positive), not a
// blend factor; only the falloff blends the quantized height in.
func applyTerrace(args ApplyArgs) []float32 {
	out := copyHeights(args.Heights)
	if degenerate(args) {
		return out
	}
	step := args.Strength
	if step <= 0 {
		step = 8.0
	}
	forEachAffected(args, false, func(idx int, w float32) {
		q := float32(math.Round(float64(out[idx]/step))) * step
		out[idx] += (q - out[idx]) * w
	})
	return out
}

// applyNoise adds deterministic per-vertex noise. Strength is the
// amplitude in world units. The seed derives from the stroke center so
// repeated passes over the same spot reproduce the same field.
func applyNoise(args ApplyArgs) []float32 {
	out := copyHeights(args.Heights)
	if degenerate(args) {
		return out
	}
	amplitude := args.Strength
	seed := strokeSeed(args.CenterX, args.CenterZ)
	forEachAffected(args, false, func(idx int, w float32) {
		ix := int64(idx % args.VertsX)
		iz := int64(idx / args.VertsX)
		out[idx] += signedNoise(ix, iz, seed) * amplitude * w
	})
	return out
}

// applySharpen is an unsharp mask: amplify the difference from the 3x3
// average. Strength is the amount in [0,1].
func applySharpen(args ApplyArgs) []float32 {
	out := copyHeights(args.Heights)
	if degenerate(args) {
		return out
	}
	amount := clamp01(args.Strength)
	forEachAffected(args, false, func(idx int, w float32) {
		avg := neighborhoodAvg(args.Heights, args.VertsX, args.VertsZ, idx)
		out[idx] += (out[idx] - avg) * amount * w
	})
	return out
}

// neighborhoodAvg averages the 3x3 neighborhood around a vertex,
// clamping at the grid border.
func neighborhoodAvg(heights []float32, vertsX, vertsZ, idx int) float32 {
	cx := idx % vertsX
	cz := idx / vertsX
	var sum float32
	var n int
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			x := cx + dx
			z := cz + dz
			if x < 0 || z < 0 || x >= vertsX || z >= vertsZ {
				continue
			}
			sum += heights[z*vertsX+x]
			n++
		}
	}
	return sum / float32(n)
}

func neighborhoodMin(heights []float32, vertsX, vertsZ, idx int) float32 {
	cx := idx % vertsX
	cz := idx / vertsX
	best := heights[idx]
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			x := cx + dx
			z := cz + dz
			if x < 0 || z < 0 || x >= vertsX || z >= vertsZ {
				continue
			}
			if h := heights[z*vertsX+x]; h < best {
				best = h
			}
		}
	}
	return best
}

func neighborhoodMax(heights []float32, vertsX, vertsZ, idx int) float32 {
	cx := idx % vertsX
	cz := idx / vertsX
	best := heights[idx]
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			x := cx + dx
			z := cz + dz
			if x < 0 || z < 0 || x >= vertsX || z >= vertsZ {
				continue
			}
			if h := heights[z*vertsX+x]; h > best {
				best = h
			}
		}
	}
	return best
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
