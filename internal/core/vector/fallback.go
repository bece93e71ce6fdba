package vector

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// FallbackDim matches the vector column width in the embeddings table.
const FallbackDim = 384

// HashEmbedding derives a deterministic vector from a SHA-256 digest of the
// text: 8-hex-char windows of the digest, each normalized to [0,1]. It always
// succeeds, but the vectors carry no semantic structure — ranking quality
// degrades to arbitrary-but-stable ordering. Known limitation, not a bug.
func HashEmbedding(text string, dim int) []float32 {
	sum := sha256.Sum256([]byte(text))
	digest := hex.EncodeToString(sum[:])

	out := make([]float32, dim)
	for i := 0; i < dim; i++ {
		start := (i * 8) % len(digest)
		end := start + 8
		if end > len(digest) {
			end = len(digest)
		}
		window := digest[start:end]
		v, _ := strconv.ParseUint(window, 16, 64)
		out[i] = float32(float64(v) / float64(0xffffffff))
	}
	return out
}

// conformDim truncates or zero-pads a vector to the target dimension so
// provider vectors always fit the fixed-width column.
func conformDim(vec []float32, dim int) []float32 {
	if len(vec) == dim {
		return vec
	}
	out := make([]float32, dim)
	copy(out, vec)
	return out
}
