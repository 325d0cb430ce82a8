package rag

import (
	"context"
	"strings"
	"testing"
)

func TestImportStoresOrderedChunks(t *testing.T) {
	repo := &stubGuidelineRepo{}
	gateway := &stubGateway{vec: []float32{0.5, 0.5}}
	importer := NewImporter(gateway, repo)

	text := strings.Repeat("Adults benefit from at least thirty minutes of daily movement. ", 60)
	n, err := importer.Import(context.Background(), SourceWHOActivity, text)
	if err != nil {
		t.Fatal(err)
	}
	if n < 2 {
		t.Fatalf("long text must produce several chunks, got %d", n)
	}
	if len(repo.chunks) != n {
		t.Fatalf("stored %d chunks, reported %d", len(repo.chunks), n)
	}
	for i, c := range repo.chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d stored with index %d", i, c.ChunkIndex)
		}
		if c.Source != SourceWHOActivity {
			t.Errorf("chunk %d has source %q", i, c.Source)
		}
		if len(DecodeVector(c.Embedding)) != 2 {
			t.Errorf("chunk %d embedding does not round-trip", i)
		}
	}
}

func TestImportIsIdempotentPerSource(t *testing.T) {
	repo := &stubGuidelineRepo{}
	gateway := &stubGateway{vec: []float32{1}}
	importer := NewImporter(gateway, repo)

	if _, err := importer.Import(context.Background(), SourceKDR, "Eat a balanced diet."); err != nil {
		t.Fatal(err)
	}
	stored := len(repo.chunks)

	n, err := importer.Import(context.Background(), SourceKDR, "Eat a balanced diet.")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("second import of the same source must be skipped, got %d chunks", n)
	}
	if len(repo.chunks) != stored {
		t.Fatal("second import must not add rows")
	}
}

func TestImportFailsWhenEmbeddingUnavailable(t *testing.T) {
	repo := &stubGuidelineRepo{}
	gateway := &stubGateway{vec: nil}
	importer := NewImporter(gateway, repo)

	if _, err := importer.Import(context.Background(), SourceWHOStress, "Breathe deeply."); err == nil {
		t.Fatal("a failed embedding must fail the import")
	}
}
