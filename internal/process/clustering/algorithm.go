// Package clustering groups document feature vectors by density.
package clustering

import (
	"fmt"
	"math"

	coreerrors "github.com/lueurxax/sred-discovery/internal/core/errors"
)

// DefaultMinClusterSize is the smallest group reported as a cluster.
const DefaultMinClusterSize = 3

const minStdDev = 1e-12

// Algorithm labels points by cluster. Implementations are selected when the
// engine is composed; callers check Available instead of probing at runtime.
type Algorithm interface {
	Available() bool
	Labels(points [][]float64, minClusterSize int) ([]int, error)
}

// Unavailable stands in when no clustering capability is configured.
type Unavailable struct{}

// Available always reports false.
func (Unavailable) Available() bool { return false }

// Labels always fails with ErrDependencyUnavailable.
func (Unavailable) Labels([][]float64, int) ([]int, error) {
	return nil, fmt.Errorf("clustering: %w", coreerrors.ErrDependencyUnavailable)
}

var (
	_ Algorithm = HDBSCAN{}
	_ Algorithm = Unavailable{}
)

// Standardize rescales every column to zero mean and unit variance.
// Constant columns become zero.
func Standardize(points [][]float64) [][]float64 {
	if len(points) == 0 {
		return nil
	}

	dims := len(points[0])
	n := float64(len(points))
	mean := make([]float64, dims)
	std := make([]float64, dims)

	for _, p := range points {
		for j, x := range p {
			mean[j] += x
		}
	}

	for j := range mean {
		mean[j] /= n
	}

	for _, p := range points {
		for j, x := range p {
			d := x - mean[j]
			std[j] += d * d
		}
	}

	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
	}

	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, dims)

		for j, x := range p {
			if std[j] > minStdDev {
				row[j] = (x - mean[j]) / std[j]
			}
		}

		out[i] = row
	}

	return out
}
