//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

package wsola

// MaxChannels is the largest channel count an Engine will accept.
const MaxChannels = 8

// Options holds the tunables for an Engine. All fields are copied into the
// Engine at construction time; mutating an Options value afterwards has no
// effect on engines already created from it.
type Options struct {
	// MinPlaybackRate and MaxPlaybackRate bound the rates at which the
	// WSOLA search runs. Outside [MinPlaybackRate, MaxPlaybackRate] the
	// engine emits silence instead (the muted band).
	MinPlaybackRate float64
	MaxPlaybackRate float64

	// OLAWindowSizeMS is the overlap-and-add window size, in
	// milliseconds. At construction time it is rounded to the nearest
	// whole number of frames (at least 2), and an odd count is raised by
	// one to make it even.
	OLAWindowSizeMS float64

	// WSOLASearchIntervalMS is the size, in milliseconds, of the
	// interval searched around the natural continuation point for the
	// best-matching block.
	WSOLASearchIntervalMS float64
}

// DefaultOptions returns the engine's default tunables. It is a pure
// function: calling it repeatedly returns equal values and has no side
// effects.
func DefaultOptions() Options {
	return Options{
		MinPlaybackRate:       0.25,
		MaxPlaybackRate:       4.0,
		OLAWindowSizeMS:       20.0,
		WSOLASearchIntervalMS: 30.0,
	}
}

// validate checks the option bounds that are not already implied by the
// channel/sample-rate checks New performs.
func (o Options) validate() error {
	if o.MinPlaybackRate <= 0 || o.MaxPlaybackRate <= 0 {
		return mapError(ErrBadOptions)
	}
	if o.MinPlaybackRate > o.MaxPlaybackRate {
		return mapError(ErrBadOptions)
	}
	if o.OLAWindowSizeMS <= 0 || o.WSOLASearchIntervalMS <= 0 {
		return mapError(ErrBadOptions)
	}
	return nil
}
