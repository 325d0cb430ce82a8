package rag

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
)

// Retrieval tuning. TopK is the number of sources returned; SnippetLength is
// the display budget per snippet.
const (
	TopK          = 2
	SnippetLength = 350
)

// Guideline source names as written by the importer.
const (
	SourceKDR              = "kdr-2020"
	SourceKoreanGuidelines = "korean-guidelines"
	SourceWHOObesity       = "who-obesity"
	SourceWHOActivity      = "who-activity"
	SourceWHOStress        = "who-stress"
)

// Match is one retrieved guideline snippet.
type Match struct {
	Source string
	Text   string
	Score  float64
}

// QueryCache is the optional embedding cache consulted before the gateway.
type QueryCache interface {
	Get(ctx context.Context, text string) []float32
	Put(ctx context.Context, text string, vec []float32)
}

// Searcher scores every stored chunk against the query and returns the best
// chunk per source, topically boosted, top TopK overall.
type Searcher struct {
	gateway    domain.LLMGateway
	guidelines domain.GuidelineRepository
	cache      QueryCache
	log        *slog.Logger
}

// NewSearcher builds a searcher; cache may be nil.
func NewSearcher(gateway domain.LLMGateway, guidelines domain.GuidelineRepository, cache QueryCache) *Searcher {
	return &Searcher{
		gateway:    gateway,
		guidelines: guidelines,
		cache:      cache,
		log:        logger.With("component", "guideline-search"),
	}
}

// Search retrieves the most relevant guideline snippets for the query.
// Returns nil when the store is empty or the query cannot be embedded.
func (s *Searcher) Search(ctx context.Context, query string) ([]Match, error) {
	queryVec := s.embedQuery(ctx, query)
	if len(queryVec) == 0 {
		s.log.Warn("query embedding unavailable, skipping retrieval")
		return nil, nil
	}

	chunks, err := s.guidelines.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	lowerQuery := strings.ToLower(query)

	// Best chunk per source, so one long document cannot monopolize the
	// result.
	best := make(map[string]Match)
	for _, chunk := range chunks {
		vec := DecodeVector(chunk.Embedding)
		score := CosineSimilarity(queryVec, vec) + domainBoost(lowerQuery, chunk.Source)
		if cur, ok := best[chunk.Source]; !ok || score > cur.Score {
			best[chunk.Source] = Match{
				Source: chunk.Source,
				Text:   Shorten(chunk.Text, SnippetLength),
				Score:  score,
			}
		}
	}

	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > TopK {
		matches = matches[:TopK]
	}

	s.log.Info("guidelines retrieved", "query", Shorten(query, 60), "matches", len(matches))
	return matches, nil
}

func (s *Searcher) embedQuery(ctx context.Context, query string) []float32 {
	if s.cache != nil {
		if vec := s.cache.Get(ctx, query); len(vec) > 0 {
			return vec
		}
	}
	vec := s.gateway.Embed(ctx, query)
	if s.cache != nil && len(vec) > 0 {
		s.cache.Put(ctx, query, vec)
	}
	return vec
}

var boostKeywords = map[string][]string{
	SourceWHOStress:   {"stress", "anxious", "anxiety", "depressed", "mood", "sleep"},
	SourceWHOActivity: {"exercise", "workout", "running", "walking", "activity", "sedentary"},
	SourceWHOObesity:  {"weight", "obesity", "obese", "bmi", "diet"},
	SourceKDR:         {"meal", "food", "eating", "nutrition", "calorie", "carb", "protein"},
}

// domainBoost nudges topically matching sources up the ranking. The weights
// are additive on top of cosine similarity.
func domainBoost(lowerQuery, source string) float64 {
	words, ok := boostKeywords[source]
	if !ok {
		return 0
	}
	matched := false
	for _, w := range words {
		if strings.Contains(lowerQuery, w) {
			matched = true
			break
		}
	}
	if !matched {
		return 0
	}
	switch source {
	case SourceWHOStress:
		return 0.15
	case SourceWHOActivity:
		return 0.10
	case SourceWHOObesity:
		return 0.08
	case SourceKDR:
		return 0.06
	}
	return 0
}

// Shorten truncates at the last whitespace inside the budget and appends an
// ellipsis. Text at or under the budget is returned unchanged; a cut with no
// whitespace in reach still lands on a rune boundary.
func Shorten(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := text[:runeFloor(text, max)]
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}
