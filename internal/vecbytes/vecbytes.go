// Package vecbytes converts embedding vectors to and from the FLOAT32 little-endian
// layout used by FT vector fields, the embedding cache and the SQLite blob column.
package vecbytes

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode packs v as consecutive little-endian float32 values.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode unpacks data produced by Encode.
func Decode(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
