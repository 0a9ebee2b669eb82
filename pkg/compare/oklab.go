package compare

import "math"

// okLab is a color in the OkLab perceptual space
type okLab struct {
	L, A, B float64
}

// srgbToLinear removes the sRGB transfer curve from one channel in [0, 1]
func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// srgbToOkLab converts 8-bit sRGB channels to OkLab
func srgbToOkLab(r, g, b uint8) okLab {
	lr := srgbToLinear(float64(r) / 255.0)
	lg := srgbToLinear(float64(g) / 255.0)
	lb := srgbToLinear(float64(b) / 255.0)

	l := 0.4122214708*lr + 0.5363325363*lg + 0.0514459929*lb
	m := 0.2119034982*lr + 0.6806995451*lg + 0.1073969566*lb
	s := 0.0883024619*lr + 0.2817188376*lg + 0.6299787005*lb

	lRoot := math.Cbrt(l)
	mRoot := math.Cbrt(m)
	sRoot := math.Cbrt(s)

	return okLab{
		L: 0.2104542553*lRoot + 0.7936177850*mRoot - 0.0040720468*sRoot,
		A: 1.9779984951*lRoot - 2.4285922050*mRoot + 0.4505937099*sRoot,
		B: 0.0259040371*lRoot + 0.7827717662*mRoot - 0.8086757660*sRoot,
	}
}

// pixelDistance is the Euclidean distance between two pixels in OkLab
// space extended with a normalized alpha axis
func pixelDistance(r1, g1, b1, a1, r2, g2, b2, a2 uint8) float64 {
	c1 := srgbToOkLab(r1, g1, b1)
	c2 := srgbToOkLab(r2, g2, b2)

	dL := c1.L - c2.L
	dA := c1.A - c2.A
	dB := c1.B - c2.B
	dAlpha := (float64(a1) - float64(a2)) / 255.0

	return math.Sqrt(dL*dL + dA*dA + dB*dB + dAlpha*dAlpha)
}
