package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
)

// maxConcurrentEmbeds bounds the parallel embedding calls per document.
const maxConcurrentEmbeds = 4

// Importer loads guideline documents into the chunk store: normalize, split,
// embed, persist. Import is idempotent per source name.
type Importer struct {
	gateway    domain.LLMGateway
	guidelines domain.GuidelineRepository
	log        *slog.Logger
}

func NewImporter(gateway domain.LLMGateway, guidelines domain.GuidelineRepository) *Importer {
	return &Importer{
		gateway:    gateway,
		guidelines: guidelines,
		log:        logger.With("component", "guideline-importer"),
	}
}

// ImportFile reads a plain-text guideline file and imports it under the given
// source name. Returns the number of chunks stored, 0 when the source already
// exists.
func (im *Importer) ImportFile(ctx context.Context, source, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return im.Import(ctx, source, string(raw))
}

// Import chunks and embeds the text under the source name. A source that is
// already present is skipped without touching its rows.
func (im *Importer) Import(ctx context.Context, source, text string) (int, error) {
	exists, err := im.guidelines.ExistsBySource(ctx, source)
	if err != nil {
		return 0, err
	}
	if exists {
		im.log.Info("source already imported, skipping", "source", source)
		return 0, nil
	}

	chunks := SplitText(NormalizeText(text))
	if len(chunks) == 0 {
		im.log.Warn("source produced no chunks", "source", source)
		return 0, nil
	}

	embeddings := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbeds)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			vec := im.gateway.Embed(gctx, chunk)
			if len(vec) == 0 {
				return fmt.Errorf("embedding failed for %s chunk %d", source, i)
			}
			embeddings[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for i, chunk := range chunks {
		row := &domain.GuidelineChunk{
			Source:     source,
			ChunkIndex: i,
			Text:       chunk,
			Embedding:  EncodeVector(embeddings[i]),
		}
		if err := im.guidelines.Save(ctx, row); err != nil {
			return i, err
		}
	}

	im.log.Info("source imported", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}
