// Package render rasterizes comparison diagnostics into small PNG
// previews for the HTML report: image diff masks, audio waveforms, and
// spectrogram difference heatmaps.
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Preview raster dimensions
const (
	WaveformWidth     = 1024
	WaveformHeight    = 256
	SpectrogramWidth  = 1024
	SpectrogramHeight = 256
)

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// DiffMaskPNG renders a pixel difference mask: differing pixels become
// translucent white, matching pixels stay fully transparent.
func DiffMaskPNG(mask []bool, width, height int) []byte {
	if width <= 0 || height <= 0 || len(mask) != width*height {
		return nil
	}

	diffColor := color.NRGBA{R: 255, G: 255, B: 255, A: 180}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y*width+x] {
				img.SetNRGBA(x, y, diffColor)
			}
		}
	}
	return encodePNG(img)
}

// WaveformPNG renders a min/max amplitude envelope of a sample buffer.
// peak scales the vertical axis; values are clamped to [-peak, peak].
func WaveformPNG(samples []float64, peak float64) []byte {
	const epsilon = 1e-6

	img := image.NewNRGBA(image.Rect(0, 0, WaveformWidth, WaveformHeight))
	if len(samples) == 0 {
		return encodePNG(img)
	}

	clip := peak * 1.2
	if clip < epsilon {
		clip = epsilon
	}
	if clip > 1.0 {
		clip = 1.0
	}
	toY := func(v float64) int {
		normalized := (v + clip) / (2 * clip)
		y := int(normalized * WaveformHeight)
		if y < 0 {
			y = 0
		}
		if y > WaveformHeight-1 {
			y = WaveformHeight - 1
		}
		return y
	}

	lineColor := color.NRGBA{G: 255, A: 255}
	for x := 0; x < WaveformWidth; x++ {
		start := x * len(samples) / WaveformWidth
		end := (x + 1) * len(samples) / WaveformWidth
		if end <= start {
			end = start + 1
		}
		if end > len(samples) {
			end = len(samples)
		}
		min, max := samples[start], samples[start]
		for _, s := range samples[start:end] {
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
		yMin, yMax := toY(min), toY(max)
		for y := yMin; y <= yMax; y++ {
			img.SetNRGBA(x, WaveformHeight-1-y, lineColor)
		}
	}
	return encodePNG(img)
}

// SpectrogramDiffPNG renders a time-by-frequency heatmap of differing-bin
// density: each cell's red alpha reflects the fraction of underlying bins
// that exceeded the spectral tolerance. diff is indexed [frame][bin] with
// low frequencies first.
func SpectrogramDiffPNG(diff [][]bool) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, SpectrogramWidth, SpectrogramHeight))
	if len(diff) == 0 || len(diff[0]) == 0 {
		return encodePNG(img)
	}

	frames := len(diff)
	bins := len(diff[0])

	for x := 0; x < SpectrogramWidth; x++ {
		fStart := x * frames / SpectrogramWidth
		fEnd := (x + 1) * frames / SpectrogramWidth
		if fEnd <= fStart {
			fEnd = fStart + 1
		}
		if fEnd > frames {
			fEnd = frames
		}
		for y := 0; y < SpectrogramHeight; y++ {
			bStart := y * bins / SpectrogramHeight
			bEnd := (y + 1) * bins / SpectrogramHeight
			if bEnd <= bStart {
				bEnd = bStart + 1
			}
			if bEnd > bins {
				bEnd = bins
			}
			var hit, total int
			for f := fStart; f < fEnd; f++ {
				for b := bStart; b < bEnd; b++ {
					total++
					if diff[f][b] {
						hit++
					}
				}
			}
			if total == 0 {
				continue
			}
			alpha := uint8(hit * 255 / total)
			// Low frequencies render at the bottom
			img.SetNRGBA(x, SpectrogramHeight-1-y, color.NRGBA{R: 255, A: alpha})
		}
	}
	return encodePNG(img)
}
