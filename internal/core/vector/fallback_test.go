package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbeddingShapeAndRange(t *testing.T) {
	vec := HashEmbedding("hemoglobin 13.5 g/dL", FallbackDim)

	require.Len(t, vec, FallbackDim)
	for _, v := range vec {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestHashEmbeddingDeterministic(t *testing.T) {
	a := HashEmbedding("same text", FallbackDim)
	b := HashEmbedding("same text", FallbackDim)
	c := HashEmbedding("different text", FallbackDim)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestHashEmbeddingCustomDim(t *testing.T) {
	vec := HashEmbedding("anything", 16)
	assert.Len(t, vec, 16)
}

func TestConformDim(t *testing.T) {
	exact := []float32{1, 2, 3}
	assert.Equal(t, exact, conformDim(exact, 3))

	padded := conformDim([]float32{1, 2}, 4)
	assert.Equal(t, []float32{1, 2, 0, 0}, padded)

	truncated := conformDim([]float32{1, 2, 3, 4}, 2)
	assert.Equal(t, []float32{1, 2}, truncated)
}
