package earlystop

import (
	"bytes"

	xdr "github.com/davecgh/go-xdr/xdr2"
)

// weight snapshots are kept XDR-encoded so the controller holds one
// compact byte slice instead of aliasing the model's live parameters

func encodeWeights(w []float64) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeWeights(b []byte) ([]float64, error) {
	var w []float64
	if _, err := xdr.Unmarshal(bytes.NewReader(b), &w); err != nil {
		return nil, err
	}
	return w, nil
}
