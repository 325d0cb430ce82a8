package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/rag"
)

type memGuidelineRepo struct {
	mu     sync.Mutex
	chunks []domain.GuidelineChunk
}

func (r *memGuidelineRepo) ExistsBySource(_ context.Context, source string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chunks {
		if c.Source == source {
			return true, nil
		}
	}
	return false, nil
}

func (r *memGuidelineRepo) Save(_ context.Context, chunk *domain.GuidelineChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, *chunk)
	return nil
}

func (r *memGuidelineRepo) FindAll(context.Context) ([]domain.GuidelineChunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.GuidelineChunk(nil), r.chunks...), nil
}

type memUserRepo struct {
	users map[uint]*domain.User
}

func (r *memUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func newCoach(stack *testStack, gateway *fakeGateway, guidelines domain.GuidelineRepository) *CoachService {
	searcher := rag.NewSearcher(gateway, guidelines, nil)
	users := NewUserService(&memUserRepo{users: map[uint]*domain.User{1: testUser()}})
	return NewCoachService(gateway, searcher, stack.feedback, stack.mealSvc, stack.exerciseSvc, stack.emotionSvc, users)
}

func TestGetDailyFeedbackGeneratesOncePerDay(t *testing.T) {
	stack := newTestStack()
	user := testUser()
	ctx := context.Background()

	gateway := &fakeGateway{
		respond: func(string) string { return "Nice balance today, keep the evening walk." },
		embedFn: func(string) []float32 { return []float32{1, 0} },
	}
	coach := newCoach(stack, gateway, &memGuidelineRepo{})

	first, err := coach.GetDailyFeedback(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if first == "" {
		t.Fatal("feedback must not be empty")
	}
	callsAfterFirst := gateway.calls()

	second, err := coach.GetDailyFeedback(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatal("second request the same day must return the stored feedback")
	}
	if gateway.calls() != callsAfterFirst {
		t.Fatal("second request must not call the gateway again")
	}
}

func TestGetDailyFeedbackNotesMissingLiterature(t *testing.T) {
	stack := newTestStack()
	user := testUser()
	ctx := context.Background()

	var coachPrompt string
	gateway := &fakeGateway{
		respond: func(prompt string) string {
			coachPrompt = prompt
			return "General advice only."
		},
		embedFn: func(string) []float32 { return nil }, // retrieval unavailable
	}
	coach := newCoach(stack, gateway, &memGuidelineRepo{})

	if _, err := coach.GetDailyFeedback(ctx, user); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(coachPrompt, "(no literature found)") {
		t.Fatal("prompt must state that no literature was found")
	}
}

func TestGetDailyFeedbackCitesRetrievedSources(t *testing.T) {
	stack := newTestStack()
	user := testUser()
	ctx := context.Background()

	guidelines := &memGuidelineRepo{chunks: []domain.GuidelineChunk{{
		Source:    rag.SourceWHOActivity,
		Text:      "Adults should accumulate 150 minutes of moderate activity weekly.",
		Embedding: rag.EncodeVector([]float32{1, 0}),
	}}}

	var coachPrompt string
	gateway := &fakeGateway{
		respond: func(prompt string) string {
			coachPrompt = prompt
			return "Grounded advice."
		},
		embedFn: func(string) []float32 { return []float32{1, 0} },
	}
	coach := newCoach(stack, gateway, guidelines)

	if _, err := coach.GetDailyFeedback(ctx, user); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(coachPrompt, "["+rag.SourceWHOActivity+"]") {
		t.Fatal("prompt must cite the retrieved source")
	}
}

func TestRecommendedBurn(t *testing.T) {
	svc := NewUserService(&memUserRepo{})

	male := &domain.User{Gender: "male", Height: 175, Weight: 70}
	female := &domain.User{Gender: "female", Height: 175, Weight: 70}
	if svc.RecommendedBurn(male) <= svc.RecommendedBurn(female) {
		t.Error("male BMR offset must yield a higher burn target at equal stats")
	}

	sparse := &domain.User{}
	if got := svc.RecommendedBurn(sparse); got != 300 {
		t.Errorf("sparse profile must fall back to 300, got %v", got)
	}
}
