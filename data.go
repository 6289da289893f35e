package rendertask

import (
	"encoding/binary"
	"math"
)

// TaskData is the packed per-task record read by the shaders.
type TaskData [FloatsPerTaskData]float32

// taskDataBytes is the size of one encoded TaskData.
const taskDataBytes = FloatsPerTaskData * 4

// EncodeTaskData appends data to dst as little-endian float32 rows, ready
// for upload into the task data texture.
func EncodeTaskData(dst []byte, data []TaskData) []byte {
	dst = growBytes(dst, len(data)*taskDataBytes)
	for _, row := range data {
		for _, v := range row {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	}
	return dst
}

func growBytes(b []byte, n int) []byte {
	if cap(b)-len(b) >= n {
		return b
	}
	grown := make([]byte, len(b), len(b)+n)
	copy(grown, b)
	return grown
}
