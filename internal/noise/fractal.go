package noise

type fractal struct {
	base       Field
	octaves    int
	lacunarity float64
	gain       float64
}

// NewFractal sums octaves of base. Each octave multiplies frequency by
// lacunarity and amplitude by gain; the sum is divided by the total amplitude
// so the result stays in [-1, 1].
func NewFractal(base Field, octaves int, lacunarity, gain float64) Field {
	if octaves < 1 {
		octaves = 1
	}
	return fractal{base: base, octaves: octaves, lacunarity: lacunarity, gain: gain}
}

func (f fractal) Eval(x, y float64) float64 {
	amp := 0.5
	freq := 1.0
	sum := 0.0
	norm := 0.0
	for i := 0; i < f.octaves; i++ {
		sum += amp * f.base.Eval(x*freq, y*freq)
		norm += amp
		amp *= f.gain
		freq *= f.lacunarity
	}
	return clampUnit(sum / norm)
}
