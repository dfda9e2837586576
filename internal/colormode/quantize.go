package colormode

const (
	cubeStart = 16
	grayStart = 232
	grayLast  = 23
)

// Quantize returns the nearest 256-color palette index, always in [16,255].
//
// Dark near-grays go straight to the grayscale ramp. Other colors use the
// 6x6x6 cube, except that colors within 40 of gray also try the ramp and
// keep whichever entry is closer.
func Quantize(r, g, b uint8) uint8 {
	avg := (int(r) + int(g) + int(b)) / 3
	maxDiff := max(absDiff(r, g), absDiff(r, b), absDiff(g, b))

	if avg < 80 && maxDiff < 30 {
		return grayStart + grayIndex(avg)
	}

	ri, gi, bi := cubeBucket(r), cubeBucket(g), cubeBucket(b)
	cube := cubeStart + 36*ri + 6*gi + bi
	cubeDist := distSq(r, g, b, cubeValue(ri), cubeValue(gi), cubeValue(bi))

	if maxDiff < 40 {
		idx := grayIndex(avg)
		v := grayValue(idx)
		if distSq(r, g, b, v, v, v) < cubeDist {
			return grayStart + idx
		}
	}

	return cube
}

// grayIndex maps an average luminance onto the 24-step grayscale ramp.
func grayIndex(avg int) uint8 {
	if avg <= 8 {
		return 0
	}
	return uint8(min(grayLast, (avg-8)*23/230)) //nolint:gosec // bounded by grayLast
}

func grayValue(idx uint8) int {
	if idx == 0 {
		return 8
	}
	return 8 + int(idx)*10
}

func cubeBucket(c uint8) uint8 {
	return uint8(int(c) * 5 / 255) //nolint:gosec // result in [0,5]
}

func cubeValue(bucket uint8) int {
	if bucket == 0 {
		return 0
	}
	return 55 + int(bucket)*40
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func distSq(r, g, b uint8, cr, cg, cb int) int {
	dr := int(r) - cr
	dg := int(g) - cg
	db := int(b) - cb
	return dr*dr + dg*dg + db*db
}
