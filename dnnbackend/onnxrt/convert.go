//go:build onnx && cgo

package onnxrt

import (
	"encoding/binary"
	"math"
)

func float32SliceToBytes(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], math.Float32bits(v))
	}
	return out
}
