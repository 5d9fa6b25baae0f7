package planarrescale

import "testing"

func TestRescaleChangesDimensions(t *testing.T) {
	src := Plane8{Data: make([]byte, 8*8), Stride: 8, Width: 8, Height: 8}
	for i := range src.Data {
		src.Data[i] = byte(i % 256)
	}

	dst, err := Rescale(src, 16, 16)
	if err != nil {
		t.Fatalf("Rescale: %v", err)
	}
	if dst.Width != 16 || dst.Height != 16 {
		t.Errorf("Rescale dims: got %dx%d, want 16x16", dst.Width, dst.Height)
	}
	if len(dst.Data) == 0 {
		t.Error("Rescale produced empty data")
	}
}

func TestRescaleRejectsInvalidTarget(t *testing.T) {
	src := Plane8{Data: make([]byte, 4), Stride: 2, Width: 2, Height: 2}
	if _, err := Rescale(src, 0, 4); err == nil {
		t.Error("expected error for zero target width")
	}
}

func TestCopyVerbatimIsIndependentBuffer(t *testing.T) {
	src := Plane8{Data: []byte{1, 2, 3, 4}, Stride: 2, Width: 2, Height: 2}
	dst := CopyVerbatim(src)
	dst.Data[0] = 99
	if src.Data[0] == 99 {
		t.Error("CopyVerbatim aliased the source buffer")
	}
}
