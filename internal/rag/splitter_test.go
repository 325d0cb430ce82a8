package rag

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitTextShortInputIsOneChunk(t *testing.T) {
	text := "Adults should do at least 150 minutes of moderate activity per week."
	chunks := SplitText(text)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("short input must come back whole, got %d chunks", len(chunks))
	}
}

func TestSplitTextEmptyInput(t *testing.T) {
	if chunks := SplitText("   \n "); chunks != nil {
		t.Fatalf("blank input must produce no chunks, got %d", len(chunks))
	}
}

func TestSplitTextRespectsBounds(t *testing.T) {
	sentence := "Regular physical activity improves cardiovascular health in adults. "
	text := strings.Repeat(sentence, 100)

	chunks := SplitText(text)
	if len(chunks) < 2 {
		t.Fatalf("long input must split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > MaxChunkSize {
			t.Errorf("chunk %d exceeds max: %d chars", i, len(c))
		}
		if i < len(chunks)-1 && len(c) < MinChunkSize {
			t.Errorf("non-final chunk %d under min: %d chars", i, len(c))
		}
	}
}

func TestSplitTextEndsAtSentenceBoundary(t *testing.T) {
	sentence := "Stress management techniques include breathing exercises and regular sleep. "
	text := strings.Repeat(sentence, 60)

	chunks := SplitText(text)
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: ...%q", i, c[len(c)-20:])
		}
	}
}

func TestSplitTextOverlapCarriesSharedText(t *testing.T) {
	sentence := "Obesity prevention requires balanced nutrition and daily movement. "
	text := strings.Repeat(sentence, 80)

	chunks := SplitText(text)
	if len(chunks) < 2 {
		t.Fatal("need at least two chunks")
	}
	// The tail of chunk 0 must reappear at the head of chunk 1.
	tail := chunks[0][len(chunks[0])-50:]
	if !strings.Contains(chunks[1], strings.TrimSpace(tail)) {
		t.Error("consecutive chunks must share overlapping text")
	}
}

func TestSplitTextKeepsRuneBoundaries(t *testing.T) {
	// Multi-byte text with no sentence enders forces the hard window cut.
	text := strings.Repeat("규칙적인 운동과 균형 잡힌 식단은 건강을 지킨다 ", 80)

	chunks := SplitText(text)
	if len(chunks) < 2 {
		t.Fatal("need several chunks to exercise the window cut")
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d splits a multi-byte rune", i)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	raw := "line one\r\nline two   with   gaps\n\n\n\nline three \n"
	got := NormalizeText(raw)

	if strings.Contains(got, "\r") {
		t.Error("carriage returns must be gone")
	}
	if strings.Contains(got, "\n\n\n") {
		t.Error("blank-line runs must collapse")
	}
	if strings.Contains(got, "  ") {
		t.Error("space runs must collapse")
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("trailing whitespace must be trimmed")
	}
}
