package util

import (
	"crypto/sha256"
	"strconv"
)

// HashMatrix produces a stable digest of a row-major float matrix.
// Used to build cache keys for validation requests.
func HashMatrix(rows [][]float64) [32]byte {
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	defer buffer.Reset()
	for i := range rows {
		for j := range rows[i] {
			buffer.WriteString(strconv.FormatFloat(rows[i][j], 'g', 16, 64))
		}
		buffer.WriteByte('\n')
	}
	return sha256.Sum256(buffer.Bytes())
}

// HashVector produces a stable digest of a float vector, the label and
// time components of a dataset digest.
func HashVector(vec []float64) [32]byte {
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	defer buffer.Reset()
	for i := range vec {
		buffer.WriteString(strconv.FormatFloat(vec[i], 'g', 16, 64))
	}
	return sha256.Sum256(buffer.Bytes())
}
