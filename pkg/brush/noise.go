package brush

// hash2D is a SplitMix64-style integer hash, stable across runs for the
// same inputs. The axes are spread by distinct odd constants so no
// lattice line maps to a constant value.
func hash2D(x, z, seed int64) uint64 {
	v := uint64(x)*0xA24BAED4963EE407 + uint64(z)*0x9FB21C651E98DF25 + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

// signedNoise maps a lattice point to a deterministic value in [-1, 1].
func signedNoise(x, z, seed int64) float32 {
	h := hash2D(x, z, seed)
	return float32(h&0xFFFFFFFF)/float32(0x7FFFFFFF) - 1
}

// strokeSeed derives a stable noise seed from a stroke center, so
// repeated strokes at the same spot reproduce the same field. The
// center is quantized to eighth-unit cells to absorb pointer jitter.
func strokeSeed(cx, cz float32) int64 {
	qx := int64(cx * 8)
	qz := int64(cz * 8)
	return int64(hash2D(qx, qz, 0x5D21F4EC7B8C905))
}
