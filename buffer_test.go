package wsola

import "testing"

func TestInputBufferAppendAndEvict(t *testing.T) {
	b := newInputBuffer(2)

	left := []float32{1, 2, 3, 4, 5}
	right := []float32{10, 20, 30, 40, 50}
	accepted := b.append([][]float32{left, right}, 5)
	if accepted != 5 {
		t.Fatalf("append returned %d, want 5", accepted)
	}
	if b.frames != 5 {
		t.Fatalf("b.frames = %d, want 5", b.frames)
	}

	b.evict(2)
	if b.frames != 3 {
		t.Fatalf("b.frames after evict(2) = %d, want 3", b.frames)
	}
	want := []float32{3, 4, 5}
	for i, v := range want {
		if b.planes[0][i] != v {
			t.Errorf("planes[0][%d] = %v, want %v", i, b.planes[0][i], v)
		}
	}

	b.evict(0)
	if b.frames != 3 {
		t.Errorf("evict(0) should be a no-op, frames = %d", b.frames)
	}
	b.evict(-5)
	if b.frames != 3 {
		t.Errorf("evict(negative) should be a no-op, frames = %d", b.frames)
	}
}

func TestInputBufferGrowth(t *testing.T) {
	b := newInputBuffer(1)
	plane := make([]float32, 10000)
	for i := range plane {
		plane[i] = float32(i)
	}
	accepted := b.append([][]float32{plane}, len(plane))
	if accepted != len(plane) {
		t.Fatalf("append returned %d, want %d", accepted, len(plane))
	}
	if b.frames != len(plane) {
		t.Fatalf("b.frames = %d, want %d", b.frames, len(plane))
	}
	for i := 0; i < len(plane); i += 997 {
		if b.planes[0][i] != plane[i] {
			t.Errorf("planes[0][%d] = %v, want %v", i, b.planes[0][i], plane[i])
		}
	}
}

func TestPeekWithZeroPrepend(t *testing.T) {
	b := newInputBuffer(1)
	data := []float32{1, 2, 3, 4}
	b.append([][]float32{data}, len(data))

	dst := [][]float32{make([]float32, 6)}
	b.peekWithZeroPrepend(dst, -2, 6)
	want := []float32{0, 0, 1, 2, 3, 4}
	for i, v := range want {
		if dst[0][i] != v {
			t.Errorf("dst[0][%d] = %v, want %v", i, dst[0][i], v)
		}
	}

	dst2 := [][]float32{make([]float32, 4)}
	b.peekWithZeroPrepend(dst2, 2, 4)
	want2 := []float32{3, 4, 0, 0}
	for i, v := range want2 {
		if dst2[0][i] != v {
			t.Errorf("dst2[0][%d] = %v, want %v", i, dst2[0][i], v)
		}
	}
}

func TestPeekInterpolated(t *testing.T) {
	b := newInputBuffer(1)
	data := []float32{0, 10, 20, 30}
	b.append([][]float32{data}, len(data))

	dst := [][]float32{make([]float32, 4)}
	b.peekInterpolated(dst, 0.5, 4)
	want := []float32{5, 15, 25, 15} // last sample interpolates toward the zero past the end
	for i, v := range want {
		if dst[0][i] != v {
			t.Errorf("dst[0][%d] = %v, want %v", i, dst[0][i], v)
		}
	}
}

func TestInputBufferReset(t *testing.T) {
	b := newInputBuffer(2)
	b.append([][]float32{{1, 2, 3}, {4, 5, 6}}, 3)
	b.reset()
	if b.frames != 0 {
		t.Fatalf("b.frames after reset = %d, want 0", b.frames)
	}
	accepted := b.append([][]float32{{7, 8}, {9, 10}}, 2)
	if accepted != 2 || b.frames != 2 {
		t.Fatalf("append after reset failed: accepted=%d frames=%d", accepted, b.frames)
	}
}
