//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

package wsola

// inputBuffer is a planar, growable ring of pending input frames. It
// supports appending to the tail, evicting from the head, and peeking a
// window of frames at an arbitrary (possibly out-of-range or fractional)
// starting position, synthesizing zeros for any position outside
// [0, frames).
//
// Growth is amortized doubling; eviction shifts the live region to the
// front of each channel's backing array with copy, so peek indexing
// stays a plain slice operation.
type inputBuffer struct {
	channels int
	planes   [][]float32 // len(planes) == channels, len(planes[ch]) == capacity
	frames   int         // valid frame count, <= capacity
}

func newInputBuffer(channels int) *inputBuffer {
	planes := make([][]float32, channels)
	for ch := range planes {
		planes[ch] = make([]float32, 0, 4096)
	}
	return &inputBuffer{channels: channels, planes: planes}
}

func (b *inputBuffer) reset() {
	b.frames = 0
	for ch := range b.planes {
		b.planes[ch] = b.planes[ch][:0]
	}
}

func (b *inputBuffer) capacity() int {
	if len(b.planes) == 0 {
		return 0
	}
	return cap(b.planes[0])
}

// grow ensures each channel plane can hold at least n frames, doubling
// capacity until it fits.
func (b *inputBuffer) grow(n int) {
	if n <= b.capacity() {
		return
	}
	newCap := b.capacity()
	if newCap == 0 {
		newCap = 4096
	}
	for newCap < n {
		newCap *= 2
	}
	for ch := range b.planes {
		grown := make([]float32, b.frames, newCap)
		copy(grown, b.planes[ch][:b.frames])
		b.planes[ch] = grown
	}
}

// append copies frameCount frames from planes onto the tail of the
// buffer, growing capacity as needed. It returns the number of frames
// accepted, which is always frameCount unless frameCount is non-positive
// or planes does not carry enough channels.
func (b *inputBuffer) append(planes [][]float32, frameCount int) int {
	if frameCount <= 0 || len(planes) < b.channels {
		return 0
	}
	b.grow(b.frames + frameCount)
	for ch := 0; ch < b.channels; ch++ {
		dst := b.planes[ch][:b.frames+frameCount]
		copy(dst[b.frames:], planes[ch][:frameCount])
		b.planes[ch] = dst
	}
	b.frames += frameCount
	return frameCount
}

// evict discards the first k frames of every channel, shifting the
// remainder to the front. It is a no-op for k <= 0; k is clamped to
// frames.
func (b *inputBuffer) evict(k int) {
	if k <= 0 {
		return
	}
	if k > b.frames {
		k = b.frames
	}
	for ch := range b.planes {
		copy(b.planes[ch], b.planes[ch][k:b.frames])
		b.planes[ch] = b.planes[ch][:b.frames-k]
	}
	b.frames -= k
}

// peekWithZeroPrepend fills dst (length frames, per channel) starting at
// input-buffer position start, which may be negative or extend past
// frames; any position outside [0, frames) reads as zero.
func (b *inputBuffer) peekWithZeroPrepend(dst [][]float32, start, length int) {
	for ch := 0; ch < b.channels; ch++ {
		out := dst[ch][:length]
		for i := 0; i < length; i++ {
			pos := start + i
			if pos < 0 || pos >= b.frames {
				out[i] = 0
				continue
			}
			out[i] = b.planes[ch][pos]
		}
	}
}

// peekInterpolated fills dst the same way as peekWithZeroPrepend but at a
// fractional start position: each output sample linearly interpolates
// between the floor and ceil source frames, each individually subject to
// the same zero-outside-range rule.
func (b *inputBuffer) peekInterpolated(dst [][]float32, startFrac float64, length int) {
	base := int(floorFloat64(startFrac))
	frac := float32(startFrac - floorFloat64(startFrac))
	for ch := 0; ch < b.channels; ch++ {
		out := dst[ch][:length]
		for i := 0; i < length; i++ {
			pos := base + i
			lo := b.sampleAt(ch, pos)
			hi := b.sampleAt(ch, pos+1)
			out[i] = lo + frac*(hi-lo)
		}
	}
}

func (b *inputBuffer) sampleAt(ch, pos int) float32 {
	if pos < 0 || pos >= b.frames {
		return 0
	}
	return b.planes[ch][pos]
}

func floorFloat64(v float64) float64 {
	i := float64(int64(v))
	if i > v {
		i--
	}
	return i
}
