//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

package wsola

// runIteration produces one hop of output: it extracts the search and
// target blocks, runs the similarity search, blends target into optimal
// via the transition window, overlap-adds the result into wsolaOutput,
// and advances outputTime by one hop scaled by the current playback
// rate. It returns false ("need more input") without mutating any
// bookkeeping if the search block's right edge would reach past what is
// currently buffered or owed as end-of-stream silence.
//
// The natural-continuation target block is always pulled straight from
// the input buffer via extractTarget (the same helper used for the very
// first hop), using a targetBlockIndex computed for the "first hop" and
// "later hop" cases separately. This is the input-buffer-coordinate
// reading of "target is the natural continuation of prior output":
// targetBlockIndex is a position in input coordinates, and reading the
// target from the input buffer avoids needing wsolaOutput to already
// contain samples it has not produced yet.
func (e *Engine) runIteration() bool {
	n := e.olaWindowSize
	hop := e.olaHopSize

	searchBlockIndex := int(floorFloat64(e.outputTime)) - e.searchBlockCenterOffset

	needed := searchBlockIndex + e.searchBlockSize
	available := e.inputBuffer.frames + e.inputBufferFinalFrames
	if needed > available {
		return false
	}

	e.searchBlockIndex = searchBlockIndex
	e.extractSearch(searchBlockIndex)

	if !e.wsolaOutputStarted {
		e.targetBlockIndex = int(floorFloat64(e.outputTime)) - n/2
	} else {
		e.targetBlockIndex = searchBlockIndex + e.searchBlockCenterOffset
	}
	e.extractTarget(e.targetBlockIndex)

	kStar := e.similaritySearch()
	e.extractOptimal(kStar)

	tw := e.transitionWindow
	for ch := 0; ch < e.channels; ch++ {
		tgt := e.targetBlock[ch]
		opt := e.optimalBlock[ch]
		for i := 0; i < n; i++ {
			opt[i] = tw[i]*tgt[i] + tw[i+n]*opt[i]
		}
	}

	w := e.olaWindow
	base := e.numCompleteFrames
	for ch := 0; ch < e.channels; ch++ {
		out := e.wsolaOutput[ch]
		opt := e.optimalBlock[ch]
		for i := 0; i < hop; i++ {
			out[base+i] += w[i] * opt[i]
		}
		for i := hop; i < n; i++ {
			out[base+i] = w[i] * opt[i]
		}
	}

	e.numCompleteFrames += hop
	e.wsolaOutputStarted = true
	e.outputTime += float64(hop) * e.currentRate
	e.metrics.HopsRun++

	e.maybeEvict()

	// Recompute from the just-advanced output_time rather than trust the
	// pre-advance value stored at the top of this call: search_block_index
	// must equal floor(output_time) - search_block_center_offset after
	// every iteration, not just at the moment the search block was
	// extracted.
	e.searchBlockIndex = int(floorFloat64(e.outputTime)) - e.searchBlockCenterOffset
	return true
}

// maybeEvict discards input frames that no future extraction can still
// need, once the live search window has advanced far enough past the
// head of the buffer to justify the copy. It keeps output_time,
// search_block_index and target_block_index consistent with the shrunk
// input buffer.
func (e *Engine) maybeEvict() {
	margin := e.inputBuffer.frames / 2
	edge := int(floorFloat64(e.outputTime)) - e.searchBlockCenterOffset
	if edge <= margin {
		return
	}

	k := edge
	if e.targetBlockIndex < k {
		k = e.targetBlockIndex
	}
	if k <= 0 {
		return
	}
	if k > e.inputBuffer.frames {
		k = e.inputBuffer.frames
	}

	e.inputBuffer.evict(k)
	e.outputTime -= float64(k)
	e.searchBlockIndex -= k
	e.targetBlockIndex -= k
	e.metrics.FramesEvicted += uint64(k)
}

// drainOutput copies up to n frames (n <= e.numCompleteFrames) from the
// head of wsolaOutput into dst and shifts the remaining complete frames
// plus the in-progress partial-OLA tail left by n, so offset 0 always
// refers to the oldest not-yet-drained sample.
func (e *Engine) drainOutput(dst [][]float32, n int) int {
	if n > e.numCompleteFrames {
		n = e.numCompleteFrames
	}
	if n <= 0 {
		return 0
	}

	tail := 0
	if e.wsolaOutputStarted {
		tail = e.olaHopSize
	}
	extent := e.numCompleteFrames + tail

	for ch := 0; ch < e.channels; ch++ {
		out := e.wsolaOutput[ch]
		copy(dst[ch][:n], out[:n])
		copy(out[:extent-n], out[n:extent])
	}
	e.numCompleteFrames -= n
	return n
}
