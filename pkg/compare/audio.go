package compare

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/sdejongh/semdiff/pkg/config"
	"github.com/sdejongh/semdiff/pkg/models"
	"github.com/sdejongh/semdiff/pkg/render"
)

// STFT parameters for the spectral comparison stage
const (
	spectrogramWindow = 2048
	spectrogramHop    = 1024
)

// silenceFloor keeps log and division math defined for silent signals
const silenceFloor = 1e-6

// AudioComparator compares two audio clips in four stages: temporal
// alignment by normalized cross-correlation within the shift tolerance
// window, loudness comparison in dB over the aligned overlap, and a
// short-time spectral comparison of the aligned signals. Only WAV input
// is decoded; other audio containers report an unsupported-format error.
type AudioComparator struct{}

// NewAudioComparator creates a new audio comparator
func NewAudioComparator() *AudioComparator {
	return &AudioComparator{}
}

// Class returns the content class this comparator handles
func (c *AudioComparator) Class() models.ContentClass {
	return models.ClassAudio
}

// Compare decodes, aligns and measures both clips
func (c *AudioComparator) Compare(ctx context.Context, pair Pair, tol *config.Tolerances) (*models.FileDetail, error) {
	expected, err := decodeWAV(pair.Path, models.SideExpected, pair.Expected)
	if err != nil {
		return nil, err
	}
	actual, err := decodeWAV(pair.Path, models.SideActual, pair.Actual)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Resample the lower-rate side so both clips share one time base
	rate := expected.rate
	if actual.rate > rate {
		rate = actual.rate
	}
	expectedSamples := resampleLinear(expected.samples, expected.rate, rate)
	actualSamples := resampleLinear(actual.samples, actual.rate, rate)

	detail := &models.AudioDetail{SampleRate: rate}

	maxShift := int(math.Round(tol.AudioShiftToleranceSeconds * float64(rate)))
	shift := bestShift(expectedSamples, actualSamples, maxShift)
	detail.ShiftSamples = shift
	detail.ShiftSeconds = float64(shift) / float64(rate)
	detail.AtWindowEdge = maxShift > 0 && (shift == maxShift || shift == -maxShift)

	// Trim both signals to their aligned overlap; everything downstream
	// sees equal-length buffers
	alignedExpected, alignedActual := alignedOverlap(expectedSamples, actualSamples, shift)

	detail.ExpectedLoudnessDB = loudnessDB(alignedExpected)
	detail.ActualLoudnessDB = loudnessDB(alignedActual)
	detail.LoudnessDeltaDB = math.Abs(detail.ExpectedLoudnessDB - detail.ActualLoudnessDB)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	diffMap := compareSpectra(alignedExpected, alignedActual, tol.AudioSpectralTolerance, detail)

	equal := detail.LoudnessDeltaDB <= tol.AudioLUFSToleranceDB &&
		detail.DiffBinRatio <= tol.AudioSpectrogramDiffRateTolerance

	// A shift can leave the signals with no overlap at all, for example
	// when a clip is shorter than the shift window. No shared content to
	// measure means there is nothing to vouch for equality: audible input
	// without a counterpart is a difference, not a vacuous match.
	if len(alignedExpected) == 0 && (len(expectedSamples) > 0 || len(actualSamples) > 0) {
		detail.DiffBinRatio = 1
		equal = false
	}

	if !equal {
		detail.ExpectedWaveformPNG = render.WaveformPNG(expectedSamples, peakAmplitude(expectedSamples))
		detail.ActualWaveformPNG = render.WaveformPNG(actualSamples, peakAmplitude(actualSamples))
		detail.SpectrogramDiffPNG = render.SpectrogramDiffPNG(diffMap)
	}

	return &models.FileDetail{
		Class: models.ClassAudio,
		Equal: equal,
		Audio: detail,
	}, nil
}

// clip is a decoded audio signal mixed down to mono
type clip struct {
	samples []float64
	rate    int
}

// decodeWAV decodes a WAV container to normalized mono float samples.
// Content that is not RIFF/WAVE at all is unsupported; RIFF content that
// fails to parse is a decode error.
func decodeWAV(path string, side models.Side, content []byte) (*clip, error) {
	if len(content) < 12 || !bytes.Equal(content[0:4], []byte("RIFF")) || !bytes.Equal(content[8:12], []byte("WAVE")) {
		return nil, models.NewCompareError(models.ErrUnsupported, path, side,
			fmt.Errorf("not a RIFF/WAVE container"))
	}

	decoder := wav.NewDecoder(bytes.NewReader(content))
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, models.NewCompareError(models.ErrDecode, path, side,
			fmt.Errorf("failed to decode WAV data: %w", err))
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, models.NewCompareError(models.ErrDecode, path, side,
			fmt.Errorf("WAV data missing format description"))
	}

	channels := buf.Format.NumChannels
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return &clip{samples: samples, rate: buf.Format.SampleRate}, nil
}

// resampleLinear converts a signal between sample rates by linear
// interpolation. A matching rate returns the input unchanged.
func resampleLinear(samples []float64, from, to int) []float64 {
	if from == to || len(samples) == 0 {
		return samples
	}

	outLen := int(math.Round(float64(len(samples)) * float64(to) / float64(from)))
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)
	step := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}

// bestShift finds the shift in [-maxShift, maxShift] maximizing normalized
// cross-correlation. Candidates are visited in order of increasing
// magnitude with negative before positive, and only a strictly greater
// correlation replaces the incumbent, so ties resolve to the smallest
// magnitude and then to the negative candidate.
func bestShift(expected, actual []float64, maxShift int) int {
	best := 0
	bestCorr := correlationAt(expected, actual, 0)
	for mag := 1; mag <= maxShift; mag++ {
		for _, shift := range []int{-mag, mag} {
			if corr := correlationAt(expected, actual, shift); corr > bestCorr {
				best = shift
				bestCorr = corr
			}
		}
	}
	return best
}

// correlationAt computes the normalized cross-correlation of the overlap
// at one shift. A positive shift aligns actual's start with expected's
// sample at index shift. Signals with no overlap or no energy correlate
// as zero.
func correlationAt(expected, actual []float64, shift int) float64 {
	e, a := expected, actual
	if shift >= 0 {
		if shift >= len(e) {
			return 0
		}
		e = e[shift:]
	} else {
		if -shift >= len(a) {
			return 0
		}
		a = a[-shift:]
	}

	n := len(e)
	if len(a) < n {
		n = len(a)
	}
	if n == 0 {
		return 0
	}

	var dot, energyE, energyA float64
	for i := 0; i < n; i++ {
		dot += e[i] * a[i]
		energyE += e[i] * e[i]
		energyA += a[i] * a[i]
	}
	norm := math.Sqrt(energyE * energyA)
	if norm < silenceFloor {
		return 0
	}
	return dot / norm
}

// alignedOverlap trims both signals to the region they cover after
// applying the shift, yielding equal-length buffers
func alignedOverlap(expected, actual []float64, shift int) ([]float64, []float64) {
	e, a := expected, actual
	if shift >= 0 {
		if shift >= len(e) {
			return nil, nil
		}
		e = e[shift:]
	} else {
		if -shift >= len(a) {
			return nil, nil
		}
		a = a[-shift:]
	}
	n := len(e)
	if len(a) < n {
		n = len(a)
	}
	return e[:n], a[:n]
}

// loudnessDB is the RMS level of a signal in dB relative to full scale
func loudnessDB(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	rms := 0.0
	if len(samples) > 0 {
		rms = math.Sqrt(sum / float64(len(samples)))
	}
	return 20 * math.Log10(math.Max(rms, silenceFloor))
}

// compareSpectra runs a Hann-windowed STFT over both aligned signals and
// counts frequency bins whose log-magnitude delta exceeds the tolerance.
// It fills the spectral fields of detail and returns the per-frame
// differing-bin map for rendering.
func compareSpectra(expected, actual []float64, tolerance float64, detail *models.AudioDetail) [][]bool {
	fft := fourier.NewFFT(spectrogramWindow)
	window := hannWindow(spectrogramWindow)

	expectedFrames := stftMagnitudes(fft, window, expected)
	actualFrames := stftMagnitudes(fft, window, actual)

	// The aligned buffers are equal-length so the frame counts match,
	// but a frame without a counterpart still counts all its bins as
	// differing
	frames := len(expectedFrames)
	if len(actualFrames) > frames {
		frames = len(actualFrames)
	}

	diffMap := make([][]bool, frames)
	var deltaSum float64
	for f := 0; f < frames; f++ {
		bins := spectrogramWindow/2 + 1
		row := make([]bool, bins)
		switch {
		case f >= len(expectedFrames) || f >= len(actualFrames):
			for b := range row {
				row[b] = true
			}
			detail.DiffBins += uint64(bins)
			detail.TotalBins += uint64(bins)
		default:
			for b := 0; b < bins; b++ {
				delta := math.Abs(expectedFrames[f][b] - actualFrames[f][b])
				deltaSum += delta
				if delta > detail.MaxBinDelta {
					detail.MaxBinDelta = delta
				}
				if delta > tolerance {
					row[b] = true
					detail.DiffBins++
				}
				detail.TotalBins++
			}
		}
		diffMap[f] = row
	}

	if detail.TotalBins > 0 {
		detail.DiffBinRatio = float64(detail.DiffBins) / float64(detail.TotalBins)
		detail.MeanBinDelta = deltaSum / float64(detail.TotalBins)
	}
	return diffMap
}

// stftMagnitudes computes log10 magnitude spectra frame by frame. A
// signal shorter than one window is zero-padded into a single frame.
func stftMagnitudes(fft *fourier.FFT, window []float64, samples []float64) [][]float64 {
	if len(samples) == 0 {
		return nil
	}

	var frames [][]float64
	buf := make([]float64, spectrogramWindow)
	appendFrame := func(start int) {
		for i := range buf {
			if start+i < len(samples) {
				buf[i] = samples[start+i] * window[i]
			} else {
				buf[i] = 0
			}
		}
		coeffs := fft.Coefficients(nil, buf)
		mags := make([]float64, len(coeffs))
		for i, c := range coeffs {
			mags[i] = math.Log10(math.Max(cmplx.Abs(c), silenceFloor))
		}
		frames = append(frames, mags)
	}

	if len(samples) < spectrogramWindow {
		appendFrame(0)
		return frames
	}
	for start := 0; start+spectrogramWindow <= len(samples); start += spectrogramHop {
		appendFrame(start)
	}
	return frames
}

func hannWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return w
}

func peakAmplitude(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}
