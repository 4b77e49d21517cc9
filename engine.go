//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

package wsola

import "math"

// Engine is a streaming WSOLA time-scale modification processor for one
// fixed (channels, sample rate) pair. It is not safe for concurrent use;
// every method must be called from a single goroutine at a time.
type Engine struct {
	channels   int
	sampleRate int
	opts       Options

	olaWindowSize           int
	olaHopSize              int
	numCandidateBlocks      int
	searchBlockCenterOffset int
	searchBlockSize         int

	olaWindow        []float32
	transitionWindow []float32

	targetBlock  [][]float32
	searchBlock  [][]float32
	optimalBlock [][]float32
	wsolaOutput  [][]float32

	inputBuffer *inputBuffer

	outputTime         float64
	searchBlockIndex   int
	targetBlockIndex   int
	numCompleteFrames  int
	wsolaOutputStarted bool

	isFinal                 bool
	inputBufferFinalFrames  int
	inputBufferAddedSilence int

	mutedPartialFrame float64
	currentRate       float64

	scratchWeightedTarget [][]float64
	scratchChannelEnergy  []float64
	scratchCandidate      [][]float64

	metrics Metrics

	closed bool
}

// New creates an Engine for the given options, channel count, and sample
// rate. It returns a non-nil error instead of a partially built instance
// on any construction failure: channels outside [1, MaxChannels], a
// non-positive sample rate, or options that fail validation.
func New(opts Options, channels, sampleRate int) (*Engine, error) {
	if channels < 1 || channels > MaxChannels {
		return nil, mapError(ErrBadChannelCount)
	}
	if sampleRate <= 0 {
		return nil, mapError(ErrBadSampleRate)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	n := int(math.Round(opts.OLAWindowSizeMS * float64(sampleRate) / 1000))
	if n < 2 {
		n = 2
	}
	if n%2 != 0 {
		n++
	}
	hop := n / 2

	numCandidateBlocks := int(math.Round(opts.WSOLASearchIntervalMS * float64(sampleRate) / 1000))
	if numCandidateBlocks < 1 {
		numCandidateBlocks = 1
	}

	centerOffset := numCandidateBlocks/2 + (n/2 - 1)
	searchBlockSize := numCandidateBlocks + n - 1

	e := &Engine{
		channels:                channels,
		sampleRate:              sampleRate,
		opts:                    opts,
		olaWindowSize:           n,
		olaHopSize:              hop,
		numCandidateBlocks:      numCandidateBlocks,
		searchBlockCenterOffset: centerOffset,
		searchBlockSize:         searchBlockSize,
		olaWindow:               olaWindow(n),
		transitionWindow:        transitionWindow(n),
		inputBuffer:             newInputBuffer(channels),
	}

	e.targetBlock = makePlanar(channels, n)
	e.searchBlock = makePlanar(channels, searchBlockSize)
	e.optimalBlock = makePlanar(channels, n)
	e.wsolaOutput = makePlanar(channels, 2*n)

	e.scratchWeightedTarget = makePlanarF64(channels, n)
	e.scratchCandidate = makePlanarF64(channels, n)
	e.scratchChannelEnergy = make([]float64, channels)

	return e, nil
}

func makePlanar(channels, frames int) [][]float32 {
	planes := make([][]float32, channels)
	for ch := range planes {
		planes[ch] = make([]float32, frames)
	}
	return planes
}

func makePlanarF64(channels, frames int) [][]float64 {
	planes := make([][]float64, channels)
	for ch := range planes {
		planes[ch] = make([]float64, frames)
	}
	return planes
}

// Reset discards all buffered input and output, resetting the engine to
// the state a freshly constructed instance would be in.
func (e *Engine) Reset() {
	if e == nil {
		return
	}
	e.inputBuffer.reset()
	for ch := range e.wsolaOutput {
		clearFloat32(e.wsolaOutput[ch])
	}
	e.outputTime = 0
	e.searchBlockIndex = 0
	e.targetBlockIndex = 0
	e.numCompleteFrames = 0
	e.wsolaOutputStarted = false
	e.isFinal = false
	e.inputBufferFinalFrames = 0
	e.inputBufferAddedSilence = 0
	e.mutedPartialFrame = 0
	e.metrics = Metrics{}
}

// Close releases the Engine. It holds no OS resources, but Close exists
// and is idempotent (including on a nil receiver) to match the usual
// lifecycle contract for a C-ABI-style destroy.
func (e *Engine) Close() error {
	if e == nil || e.closed {
		return nil
	}
	e.closed = true
	return nil
}

func clearFloat32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}

// muted reports whether rate falls outside [MinPlaybackRate,
// MaxPlaybackRate], the band in which the engine emits silence instead
// of running WSOLA.
func (e *Engine) muted(rate float64) bool {
	return rate < e.opts.MinPlaybackRate || rate > e.opts.MaxPlaybackRate
}

// backpressureThreshold is the input-buffer occupancy, in frames, above
// which FillInputBuffer refuses additional input: enough is already
// buffered to sustain several hops at the given rate. Scaling with rate
// keeps the threshold meaningful at high playback rates, which consume
// buffered input faster per hop.
func (e *Engine) backpressureThreshold(rate float64) int {
	base := e.searchBlockSize * 4
	if rate > 1 {
		base = int(float64(base) * rate)
	}
	return base
}

// FillInputBuffer appends up to frameCount frames of planar input,
// returning the number actually accepted. It returns 0 without error
// once enough input is already buffered to sustain several hops at rate
// (backpressure), or if frameCount is non-positive.
func (e *Engine) FillInputBuffer(planes [][]float32, frameCount int, rate float64) (int, error) {
	if e == nil || e.closed {
		return 0, mapError(ErrBadState)
	}
	if frameCount <= 0 {
		return 0, nil
	}
	if e.inputBuffer.frames >= e.backpressureThreshold(rate) {
		return 0, nil
	}
	return e.inputBuffer.append(planes, frameCount), nil
}

// SetFinal marks the input stream as finite. It is idempotent: once set,
// further calls have no effect. The amount of trailing silence needed to
// flush any remaining content is at least olaWindowSize+searchBlockSize.
func (e *Engine) SetFinal() {
	if e == nil || e.closed || e.isFinal {
		return
	}
	e.isFinal = true
	e.inputBufferFinalFrames = e.olaWindowSize + e.searchBlockSize
}

// FramesAvailable reports whether a call to FillBuffer at rate could
// produce at least one frame without additional input: either a hop is
// already sitting complete in wsolaOutput, rate falls in the muted band
// (silence is always available), or the input buffered so far (plus any
// EOS silence still owed) is enough to complete one more hop.
func (e *Engine) FramesAvailable(rate float64) bool {
	if e == nil || e.closed {
		return false
	}
	if e.muted(rate) {
		return true
	}
	if e.numCompleteFrames > 0 {
		return true
	}
	searchBlockIndex := int(floorFloat64(e.outputTime)) - e.searchBlockCenterOffset
	needed := searchBlockIndex + e.searchBlockSize
	available := e.inputBuffer.frames + e.inputBufferFinalFrames
	return needed <= available
}

// Latency returns, in frames, the delay between the last input frame
// appended and the next frame FillBuffer will emit: the input still
// buffered beyond what has already been folded into output_time, plus
// any output sitting complete and ready to drain.
func (e *Engine) Latency(rate float64) float64 {
	if e == nil || e.closed {
		return 0
	}
	_ = rate // the formula below is rate-independent; rate is accepted for symmetry with FillBuffer's signature.
	return float64(e.inputBuffer.frames) - (e.outputTime - float64(e.targetBlockIndex)) + float64(e.numCompleteFrames)
}

// FillBuffer writes up to destFrames rate-adjusted frames into dest,
// returning the number actually produced. If rate falls outside
// [MinPlaybackRate, MaxPlaybackRate] the engine emits exactly destFrames
// zeros (the muted band) and silently discards the corresponding amount
// of input. Otherwise it runs WSOLA iterations on demand, draining each
// completed hop into dest, until dest is full or the engine is starved
// (no more input, and not final, or EOS exhausted).
func (e *Engine) FillBuffer(dest [][]float32, destFrames int, rate float64) int {
	if e == nil || e.closed || destFrames <= 0 {
		return 0
	}

	if e.muted(rate) {
		for ch := 0; ch < e.channels; ch++ {
			clearFloat32(dest[ch][:destFrames])
		}
		e.mutedPartialFrame += float64(destFrames) * rate
		discard := int(e.mutedPartialFrame)
		e.mutedPartialFrame -= float64(discard)
		if discard > e.inputBuffer.frames {
			discard = e.inputBuffer.frames
		}
		e.inputBuffer.evict(discard)
		e.metrics.FramesMuted += uint64(destFrames)
		return destFrames
	}

	e.currentRate = rate
	produced := 0
	for produced < destFrames {
		if e.numCompleteFrames == 0 {
			if !e.runIteration() {
				break
			}
		}
		got := e.drainOutput(offsetPlanes(dest, produced), destFrames-produced)
		if got == 0 {
			break
		}
		produced += got
	}
	return produced
}

// offsetPlanes returns a view of planes with each channel's slice
// advanced by off frames, so drainOutput can write directly into the
// caller's destination at the current write position.
func offsetPlanes(planes [][]float32, off int) [][]float32 {
	out := make([][]float32, len(planes))
	for i, p := range planes {
		out[i] = p[off:]
	}
	return out
}
