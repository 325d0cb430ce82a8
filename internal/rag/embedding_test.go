package rag

import (
	"math"
	"testing"
)

func TestVectorCodecRoundTrip(t *testing.T) {
	vec := []float32{0.1, -2.5, 0, 3.1415, float32(math.Inf(1))}
	decoded := DecodeVector(EncodeVector(vec))
	if len(decoded) != len(vec) {
		t.Fatalf("length %d, want %d", len(decoded), len(vec))
	}
	for i := range vec {
		if decoded[i] != vec[i] {
			t.Errorf("index %d: %v != %v", i, decoded[i], vec[i])
		}
	}
}

func TestDecodeVectorRejectsRaggedBlob(t *testing.T) {
	if DecodeVector([]byte{1, 2, 3}) != nil {
		t.Fatal("blob length not divisible by 4 must decode to nil")
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	if got := CosineSimilarity(a, a); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: %v, want 1", got)
	}
	if got := CosineSimilarity(a, b); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: %v, want 0", got)
	}
	if got := CosineSimilarity(a, []float32{-1, 0, 0}); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite vectors: %v, want -1", got)
	}
	if got := CosineSimilarity(a, []float32{0, 0}); got != 0 {
		t.Errorf("mismatched lengths: %v, want 0", got)
	}
	if got := CosineSimilarity(a, []float32{0, 0, 0}); got != 0 {
		t.Errorf("zero vector: %v, want 0", got)
	}
}
