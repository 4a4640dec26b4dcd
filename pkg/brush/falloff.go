package brush

import "math"

// Smoothstep is the cubic Hermite ease t²(3-2t), clamped to [0,1]. It
// gives brushes C¹-continuous edges.
func Smoothstep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Falloff returns the stroke weight at distance d from the center:
// 1 at the center, easing to 0 at the radius, 0 beyond it.
func Falloff(d, radius float32) float32 {
	if radius <= 0 || d >= radius {
		return 0
	}
	return Smoothstep(1 - d/radius)
}

// degenerate reports stroke arguments that must produce a silent
// no-op: a grid too small to edit, a non-positive radius, or a heights
// array that does not match the grid dimensions.
func degenerate(args ApplyArgs) bool {
	return args.VertsX < 2 || args.VertsZ < 2 ||
		args.Radius <= 0 ||
		len(args.Heights) != args.VertsX*args.VertsZ
}

// copyHeights returns an unchanged copy, the no-op result.
func copyHeights(h []float32) []float32 {
	return append([]float32(nil), h...)
}

// forEachAffected visits every vertex inside the stroke footprint with
// a positive falloff weight. The candidate sub-rectangle is computed
// from the world bounds of the stroke so the loop cost is proportional
// to the affected area, not the grid.
func forEachAffected(args ApplyArgs, chebyshev bool, fn func(idx int, w float32)) {
	stepX := args.WorldWidth / float32(args.VertsX-1)
	stepZ := args.WorldLength / float32(args.VertsZ-1)
	if stepX <= 0 || stepZ <= 0 {
		return
	}

	halfW := args.WorldWidth / 2
	halfL := args.WorldLength / 2

	x0 := clampIndex(int(math.Floor(float64((args.CenterX-args.Radius+halfW)/stepX))), args.VertsX-1)
	x1 := clampIndex(int(math.Ceil(float64((args.CenterX+args.Radius+halfW)/stepX))), args.VertsX-1)
	z0 := clampIndex(int(math.Floor(float64((args.CenterZ-args.Radius+halfL)/stepZ))), args.VertsZ-1)
	z1 := clampIndex(int(math.Ceil(float64((args.CenterZ+args.Radius+halfL)/stepZ))), args.VertsZ-1)

	for iz := z0; iz <= z1; iz++ {
		dz := float32(iz)*stepZ - halfL - args.CenterZ
		for ix := x0; ix <= x1; ix++ {
			dx := float32(ix)*stepX - halfW - args.CenterX
			var d float32
			if chebyshev {
				d = chebyshevDist(dx, dz)
			} else {
				d = float32(math.Sqrt(float64(dx*dx + dz*dz)))
			}
			w := Falloff(d, args.Radius)
			if w <= 0 {
				continue
			}
			fn(iz*args.VertsX+ix, w)
		}
	}
}

// strokeOffsets is forEachAffected with the local offsets of each
// vertex exposed, as needed by the image stamp.
func strokeOffsets(args ApplyArgs, fn func(idx int, dx, dz, w float32)) {
	stepX := args.WorldWidth / float32(args.VertsX-1)
	stepZ := args.WorldLength / float32(args.VertsZ-1)
	if stepX <= 0 || stepZ <= 0 {
		return
	}

	halfW := args.WorldWidth / 2
	halfL := args.WorldLength / 2

	x0 := clampIndex(int(math.Floor(float64((args.CenterX-args.Radius+halfW)/stepX))), args.VertsX-1)
	x1 := clampIndex(int(math.Ceil(float64((args.CenterX+args.Radius+halfW)/stepX))), args.VertsX-1)
	z0 := clampIndex(int(math.Floor(float64((args.CenterZ-args.Radius+halfL)/stepZ))), args.VertsZ-1)
	z1 := clampIndex(int(math.Ceil(float64((args.CenterZ+args.Radius+halfL)/stepZ))), args.VertsZ-1)

	for iz := z0; iz <= z1; iz++ {
		dz := float32(iz)*stepZ - halfL - args.CenterZ
		for ix := x0; ix <= x1; ix++ {
			dx := float32(ix)*stepX - halfW - args.CenterX
			d := float32(math.Sqrt(float64(dx*dx + dz*dz)))
			if d >= args.Radius {
				continue
			}
			fn(iz*args.VertsX+ix, dx, dz, Falloff(d, args.Radius))
		}
	}
}

func chebyshevDist(dx, dz float32) float32 {
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

func clampIndex(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
