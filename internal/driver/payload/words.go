package payload

import "fmt"

// Words splits a sensor payload into its little-endian words. Callers dispatch
// on length first, so a ragged tail means the framing table and the payload
// disagree.
func Words(b []byte) ([]int32, error) {
	if len(b)%WordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of words", ErrOutOfBounds, len(b))
	}
	words := make([]int32, 0, len(b)/WordSize)
	for off := 0; off < len(b); off += WordSize {
		w, err := Int32LE(b, off)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, nil
}
