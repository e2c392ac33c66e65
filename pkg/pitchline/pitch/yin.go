package pitch

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// yinDipThreshold is the CMNDF dip depth the detector requires before it
// accepts a lag as periodic. This is an internal algorithm constant, not
// the caller-facing clarity gate (which Estimate receives as a
// parameter and which the sampler disables).
const yinDipThreshold = 0.15

// minLag excludes degenerate one-sample lags from the search.
const minLag = 2

// YIN is the default Estimator: the YIN autocorrelation method with
// cumulative mean normalization and parabolic lag interpolation. The
// difference function is computed through an FFT autocorrelation, so a
// full window costs O(n log n) instead of O(n^2).
//
// Lags are searched up to half the window length, so a window must
// contain at least two full periods of a frequency for it to be
// detectable; shorter trailing windows simply decline.
type YIN struct{}

// NewYIN returns a YIN estimator. It is stateless and safe for
// concurrent use.
func NewYIN() *YIN { return &YIN{} }

// Estimate returns the dominant fundamental frequency of the window, or
// ok=false when the window is silent, too short, or aperiodic (no CMNDF
// dip below the detector's threshold).
func (y *YIN) Estimate(window []float32, sampleRate int, powerThreshold, clarityThreshold float64) (Candidate, bool) {
	n := len(window)
	maxLag := n / 2
	if sampleRate <= 0 || maxLag <= minLag {
		return Candidate{}, false
	}

	x := make([]float64, n)
	var power float64
	for i, s := range window {
		x[i] = float64(s)
		power += float64(s) * float64(s)
	}
	power /= float64(n)
	if power <= powerThreshold || power < 1e-10 {
		return Candidate{}, false
	}

	d := differenceFunction(x, maxLag)

	// Cumulative mean normalized difference.
	cmndf := make([]float64, maxLag)
	cmndf[0] = 1
	var running float64
	for lag := 1; lag < maxLag; lag++ {
		running += d[lag]
		if running > 0 {
			cmndf[lag] = d[lag] * float64(lag) / running
		} else {
			cmndf[lag] = 1
		}
	}

	// Absolute threshold: first lag whose dip crosses the threshold,
	// then descend to the bottom of that dip.
	lag := -1
	for t := minLag; t < maxLag; t++ {
		if cmndf[t] < yinDipThreshold {
			for t+1 < maxLag && cmndf[t+1] < cmndf[t] {
				t++
			}
			lag = t
			break
		}
	}
	if lag < 0 {
		return Candidate{}, false
	}

	clarity := 1 - cmndf[lag]
	if clarity < clarityThreshold {
		return Candidate{}, false
	}

	refined := parabolicLag(cmndf, lag)
	return Candidate{
		Frequency: float32(float64(sampleRate) / refined),
		Clarity:   float32(clarity),
	}, true
}

// differenceFunction computes the YIN difference
// d(lag) = sum_{j=0}^{n-lag-1} (x_j - x_{j+lag})^2 for lag < maxLag,
// expanded into window energies minus twice the autocorrelation. The
// autocorrelation comes from a zero-padded FFT so the circular product
// equals the linear one.
func differenceFunction(x []float64, maxLag int) []float64 {
	n := len(x)

	// Prefix energies: cum[i] = sum of x[0:i] squared.
	cum := make([]float64, n+1)
	for i, v := range x {
		cum[i+1] = cum[i] + v*v
	}

	size := 1
	for size < 2*n {
		size <<= 1
	}
	padded := make([]float64, size)
	copy(padded, x)

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		spectrum[i] = c * cmplx.Conj(c)
	}
	acf := fft.IFFT(spectrum)

	d := make([]float64, maxLag)
	for lag := 1; lag < maxLag; lag++ {
		v := cum[n-lag] + (cum[n] - cum[lag]) - 2*real(acf[lag])
		if v < 0 {
			v = 0 // numeric noise around perfect periodicity
		}
		d[lag] = v
	}
	return d
}

// parabolicLag interpolates the true CMNDF minimum between integer lags
// by fitting a parabola through the dip and its neighbours.
func parabolicLag(cmndf []float64, lag int) float64 {
	if lag <= 0 || lag >= len(cmndf)-1 {
		return float64(lag)
	}
	s0, s1, s2 := cmndf[lag-1], cmndf[lag], cmndf[lag+1]
	denom := s0 + s2 - 2*s1
	if denom == 0 {
		return float64(lag)
	}
	adjust := (s0 - s2) / (2 * denom)
	if adjust > 0.5 || adjust < -0.5 {
		return float64(lag)
	}
	return float64(lag) + adjust
}
