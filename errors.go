package ljpw

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ljpw/dataset"
)

var (
	// ErrInvalidK is returned when k is not in [1, dataset size].
	ErrInvalidK = errors.New("k must be between 1 and the dataset size")

	// ErrNotFound is returned when a concept name is not in the dataset.
	ErrNotFound = errors.New("concept not found")
)

// ErrDimensionMismatch indicates a query vector of the wrong length.
// Coordinate vectors are always 4-dimensional.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func checkVector(v []float32) error {
	if len(v) != dataset.Dimension {
		return &ErrDimensionMismatch{Expected: dataset.Dimension, Actual: len(v)}
	}
	return nil
}

func checkK(k, size int) error {
	if k < 1 || k > size {
		return fmt.Errorf("%w: k=%d, size=%d", ErrInvalidK, k, size)
	}
	return nil
}
