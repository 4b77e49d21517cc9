package wsola

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// estimateFundamental finds the dominant periodicity of signal, in Hz,
// via autocorrelation computed as the inverse FFT of the power spectrum
// (Wiener-Khinchin). The signal is zero-padded to twice its length
// before transforming so the circular autocorrelation the real FFT
// produces does not wrap energy from one end of the window into the
// other.
func estimateFundamental(signal []float64, sampleRate float64) float64 {
	n := len(signal)
	padded := make([]float64, nextPow2(2*n))
	copy(padded, signal)

	fft := fourier.NewFFT(len(padded))
	spectrum := fft.Coefficients(nil, padded)

	power := make([]complex128, len(spectrum))
	for i, c := range spectrum {
		mag := real(c)*real(c) + imag(c)*imag(c)
		power[i] = complex(mag, 0)
	}

	autocorr := fft.Sequence(nil, power)

	minLag := int(sampleRate / 2000) // reject periods above 2kHz
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(sampleRate / 50) // reject periods below 50Hz
	if maxLag >= len(padded)/2 {
		maxLag = len(padded)/2 - 1
	}

	bestLag := minLag
	bestVal := autocorr[minLag]
	for lag := minLag + 1; lag <= maxLag; lag++ {
		if autocorr[lag] > bestVal {
			bestVal = autocorr[lag]
			bestLag = lag
		}
	}
	if bestLag == 0 {
		return 0
	}
	return sampleRate / float64(bestLag)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func centsDifference(f1, f2 float64) float64 {
	if f1 <= 0 || f2 <= 0 {
		return math.Inf(1)
	}
	return 1200 * math.Log2(f1/f2)
}

func TestPitchPreservedAcrossRates(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 440.0
	rates := []float64{0.5, 0.75, 1.0, 1.5, 2.0}

	for _, rate := range rates {
		rate := rate
		t.Run(ratioLabel(rate), func(t *testing.T) {
			e, err := New(DefaultOptions(), 1, sampleRate)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			inputFrames := 16384
			input := sineInput(1, inputFrames, freq, sampleRate, 0.8)
			if _, err := e.FillInputBuffer(input, inputFrames, rate); err != nil {
				t.Fatalf("FillInputBuffer error = %v", err)
			}
			e.SetFinal()

			dest := [][]float32{make([]float32, 32768)}
			total := 0
			for total < len(dest[0]) {
				got := e.FillBuffer([][]float32{dest[0][total:]}, len(dest[0])-total, rate)
				if got == 0 {
					break
				}
				total += got
			}
			if total < 4096 {
				t.Fatalf("not enough output produced (%d frames) to estimate pitch", total)
			}

			// Discard the startup transient before measuring.
			analysisStart := e.olaWindowSize * 2
			if analysisStart+4096 > total {
				analysisStart = 0
			}
			window := dest[0][analysisStart : analysisStart+4096]
			signal := make([]float64, len(window))
			for i, v := range window {
				signal[i] = float64(v)
			}

			got := estimateFundamental(signal, sampleRate)
			cents := centsDifference(got, freq)
			if math.Abs(cents) > 50 {
				t.Errorf("rate=%.2f: estimated fundamental %.2fHz, want ~%.2fHz (%.1f cents off)", rate, got, freq, cents)
			}
		})
	}
}

func TestIdentityAtRateOneCorrelatesWithInput(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 440.0

	e, err := New(DefaultOptions(), 1, sampleRate)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	inputFrames := 8000
	input := sineInput(1, inputFrames, freq, sampleRate, 0.5)
	if _, err := e.FillInputBuffer(input, inputFrames, 1.0); err != nil {
		t.Fatalf("FillInputBuffer error = %v", err)
	}
	e.SetFinal()

	dest := [][]float32{make([]float32, 16384)}
	total := 0
	for total < len(dest[0]) {
		got := e.FillBuffer([][]float32{dest[0][total:]}, len(dest[0])-total, 1.0)
		if got == 0 {
			break
		}
		total += got
	}

	latency := int(math.Round(e.Latency(1.0)))
	if latency < 0 {
		latency = 0
	}
	n := inputFrames - 2*e.olaWindowSize
	if n <= 0 || latency+n > total {
		t.Skip("not enough aligned overlap to correlate")
	}

	out := make([]float64, n)
	ref := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(dest[0][latency+i])
		ref[i] = float64(input[0][i])
	}

	dot := floats.Dot(out, ref)
	normOut := floats.Norm(out, 2)
	normRef := floats.Norm(ref, 2)
	if normOut == 0 || normRef == 0 {
		t.Fatal("zero-energy signal, correlation undefined")
	}
	correlation := dot / (normOut * normRef)
	if correlation < 0.99 {
		t.Errorf("correlation with latency-shifted input = %v, want >= 0.99", correlation)
	}
}

func ratioLabel(rate float64) string {
	return fmt.Sprintf("rate=%.2f", rate)
}
