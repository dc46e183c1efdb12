package synth

import "fmt"

// BinauralBeat generates a stereo buffer with baseHz in the left ear and
// baseHz+beatHz in the right. The listener perceives a beat at beatHz; the
// synthesizer only guarantees the two channel frequencies.
//
// Both channels are combined and then attenuated by ToneAttenuationDB.
func BinauralBeat(baseHz, beatHz float64, durationMs, sampleRate int) (*Buffer, error) {
	if err := validateTiming(durationMs, sampleRate); err != nil {
		return nil, err
	}
	if beatHz < 0 {
		return nil, fmt.Errorf("%w: beat frequency must not be negative, got %g Hz", ErrInvalidParameter, beatHz)
	}
	if err := validateFrequency(baseHz, sampleRate); err != nil {
		return nil, err
	}
	if err := validateFrequency(baseHz+beatHz, sampleRate); err != nil {
		return nil, err
	}

	frames := frameCount(durationMs, sampleRate)
	buf := newBuffer(sampleRate, 2, frames)
	fillSine(buf.Channels[0], baseHz, sampleRate)
	fillSine(buf.Channels[1], baseHz+beatHz, sampleRate)
	buf.Attenuate(ToneAttenuationDB)
	return buf, nil
}
