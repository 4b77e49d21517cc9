//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

// Package wsola implements a streaming Waveform Similarity Overlap-Add
// (WSOLA) time-scale modification engine.
//
// It changes the playback speed of a planar 32-bit float PCM stream by an
// arbitrary, time-varying rational factor without altering pitch. Callers
// append decoded audio with FillInputBuffer and pull rate-adjusted audio
// with FillBuffer; the engine does not resample, decode, or otherwise
// touch the sample rate, it only stretches or compresses the timeline.
//
// An Engine is created once for a fixed (channels, sample rate) pair with
// New, and is not safe for concurrent use: every method must be called
// from a single goroutine at a time, though independent Engine values
// share no state and may be driven from separate goroutines.
package wsola
