// Package analysis measures synthesized buffers: level, dominant frequency
// and spectral flatness per channel.
package analysis

import (
	"math"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/linuxmatters/harmonygen/internal/synth"
)

// MaxWindow caps the number of frames fed to the FFT.
// 65536 frames at 44.1 kHz gives ~0.67 Hz bin resolution.
const MaxWindow = 1 << 16

// ChannelMeasurements holds the measurements for a single channel.
type ChannelMeasurements struct {
	DominantHz float64 // Frequency of the strongest spectral peak
	Flatness   float64 // Geometric/arithmetic mean of power spectrum. 0=pure tone, 1=white noise
	Crest      float64 // max(power)/mean(power), linear ratio
	PeakDBFS   float64 // Sample peak in dBFS
	RMSDBFS    float64 // RMS level in dBFS
}

// Measurements describes a whole buffer.
type Measurements struct {
	SampleRate int
	Duration   time.Duration
	Channels   []ChannelMeasurements
}

// Left returns the first channel's measurements.
func (m *Measurements) Left() ChannelMeasurements {
	if len(m.Channels) == 0 {
		return ChannelMeasurements{}
	}
	return m.Channels[0]
}

// Right returns the second channel's measurements, or the first for mono.
func (m *Measurements) Right() ChannelMeasurements {
	if len(m.Channels) < 2 {
		return m.Left()
	}
	return m.Channels[1]
}

// Measure analyses every channel of buf.
func Measure(buf *synth.Buffer) *Measurements {
	m := &Measurements{
		SampleRate: buf.SampleRate,
		Duration:   buf.Duration(),
		Channels:   make([]ChannelMeasurements, buf.NumChannels()),
	}
	for i := range m.Channels {
		m.Channels[i] = measureChannel(buf.Channel(i), buf.SampleRate)
	}
	return m
}

func measureChannel(samples []float64, sampleRate int) ChannelMeasurements {
	var cm ChannelMeasurements

	peak, sumSquares := 0.0, 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
		sumSquares += s * s
	}
	cm.PeakDBFS = synth.LinearToDb(peak)
	if len(samples) > 0 {
		cm.RMSDBFS = synth.LinearToDb(math.Sqrt(sumSquares / float64(len(samples))))
	} else {
		cm.RMSDBFS = synth.LinearToDb(0)
	}

	power := PowerSpectrum(samples)
	if len(power) < 3 {
		return cm
	}
	n := windowLength(len(samples))

	// Bin 0 is DC and excluded from every spectral figure
	bins := power[1:]
	peakBin, peakPower := 0, 0.0
	sum, logSum := 0.0, 0.0
	for i, p := range bins {
		if p > peakPower {
			peakBin, peakPower = i, p
		}
		sum += p
		logSum += math.Log(p + 1e-20)
	}
	mean := sum / float64(len(bins))
	if mean > 0 {
		cm.Flatness = math.Exp(logSum/float64(len(bins))) / mean
		cm.Crest = peakPower / mean
	}

	// Parabolic interpolation around the peak, on log power
	bin := float64(peakBin + 1)
	if peakBin > 0 && peakBin < len(bins)-1 {
		a := math.Log(bins[peakBin-1] + 1e-20)
		b := math.Log(bins[peakBin] + 1e-20)
		c := math.Log(bins[peakBin+1] + 1e-20)
		if denom := a - 2*b + c; denom != 0 {
			bin += 0.5 * (a - c) / denom
		}
	}
	cm.DominantHz = bin * float64(sampleRate) / float64(n)

	return cm
}

// PowerSpectrum returns |X(k)|² for k in [0, n/2] of the Hann-windowed
// leading window of samples.
func PowerSpectrum(samples []float64) []float64 {
	n := windowLength(len(samples))
	if n < 4 {
		return nil
	}

	seq := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		seq[i] = samples[i] * w
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		power[i] = re*re + im*im
	}
	return power
}

func windowLength(frames int) int {
	if frames > MaxWindow {
		return MaxWindow
	}
	return frames
}
