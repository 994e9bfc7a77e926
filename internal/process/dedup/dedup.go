// Package dedup holds the vector math shared by discovery and change
// detection, plus merging of duplicate project candidates.
package dedup

import (
	"math"
)

func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float32

	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// Mean averages vectors of the dimension of the first non-empty one.
// Vectors of another dimension are skipped. It returns nil when nothing is left.
func Mean(vectors [][]float32) []float32 {
	var (
		sum   []float32
		count int
	)

	for _, v := range vectors {
		if len(v) == 0 {
			continue
		}

		if sum == nil {
			sum = make([]float32, len(v))
		}

		if len(v) != len(sum) {
			continue
		}

		for i, x := range v {
			sum[i] += x
		}

		count++
	}

	if count == 0 {
		return nil
	}

	for i := range sum {
		sum[i] /= float32(count)
	}

	return sum
}
