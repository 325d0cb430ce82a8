package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/healthchat/backend/internal/domain"
	"github.com/healthchat/backend/internal/logger"
	"github.com/healthchat/backend/internal/utils"
)

// EmotionService accumulates per-message emotion analyses into the day's
// aggregate. Emotions append over the day; the primary is recomputed over the
// combined history, not taken from the newest message.
type EmotionService struct {
	emotions domain.EmotionRepository
	dayLogs  *DayLogService
	log      *slog.Logger
}

func NewEmotionService(emotions domain.EmotionRepository, dayLogs *DayLogService) *EmotionService {
	return &EmotionService{
		emotions: emotions,
		dayLogs:  dayLogs,
		log:      logger.With("component", "emotion-service"),
	}
}

func (s *EmotionService) GetToday(ctx context.Context, user *domain.User) (*domain.EmotionSummary, error) {
	return s.GetByDate(ctx, user, utils.Today())
}

func (s *EmotionService) GetByDate(ctx context.Context, user *domain.User, date time.Time) (*domain.EmotionSummary, error) {
	emotion, err := s.emotions.FindByUserAndDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	if emotion == nil {
		summary := domain.EmotionDeleted()
		summary.Action = domain.ActionAdd
		summary.Date = date.Format("2006-01-02")
		return summary, nil
	}
	return ToEmotionSummary(emotion), nil
}

// DeleteToday removes today's emotion row, clearing the DayLog reference
// first.
func (s *EmotionService) DeleteToday(ctx context.Context, user *domain.User) error {
	today := utils.Today()
	if err := s.dayLogs.ClearEmotion(ctx, user, today); err != nil {
		return err
	}
	if err := s.emotions.DeleteByUserAndDate(ctx, user.ID, today); err != nil {
		return err
	}
	s.log.Info("emotion record deleted", "user", user.ID, "date", today.Format("2006-01-02"))
	return nil
}

// SaveAnalysis appends the message's emotions to today's history and persists
// the merged aggregate. An analysis with no emotions leaves the stored row
// untouched and returns the current state.
func (s *EmotionService) SaveAnalysis(ctx context.Context, user *domain.User, analysis *domain.EmotionAnalysis) (*domain.DailyEmotion, error) {
	today := utils.Today()

	emotion, err := s.emotions.FindByUserAndDate(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}
	if len(analysis.Emotions) == 0 {
		return emotion, nil
	}
	if emotion == nil {
		emotion = &domain.DailyEmotion{UserID: user.ID, Date: today}
	}

	emotions := append(decodeStringList(emotion.EmotionsJSON), analysis.Emotions...)
	scores := append(decodeIntList(emotion.ScoresJSON), analysis.Scores...)
	summaries := append(decodeStringList(emotion.SummariesJSON), analysis.Summaries...)
	keywords := append(decodeKeywordLists(emotion.KeywordsJSON), analysis.Keywords...)

	emotion.EmotionsJSON = encodeJSON(emotions)
	emotion.ScoresJSON = encodeJSON(scores)
	emotion.SummariesJSON = encodeJSON(summaries)
	emotion.KeywordsJSON = encodeJSON(keywords)

	// Primary is the argmax over the whole day, ties keep the earlier entry.
	primary, score := argmaxEmotion(emotions, scores)
	emotion.PrimaryEmotion = primary
	emotion.PrimaryScore = score

	if emotion.RawText == "" {
		emotion.RawText = analysis.RawText
	} else if analysis.RawText != "" {
		emotion.RawText += "\n" + analysis.RawText
	}

	if err := s.emotions.Save(ctx, emotion); err != nil {
		return nil, err
	}

	s.log.Info("emotion reconciled",
		"user", user.ID,
		"primary", emotion.PrimaryEmotion,
		"entries", len(emotions))

	return emotion, nil
}

// SaveManual overwrites the day's emotion aggregate with a user-edited set.
// The primary is still recomputed server-side.
func (s *EmotionService) SaveManual(ctx context.Context, user *domain.User, date time.Time, edit *domain.EmotionAnalysis) (*domain.DailyEmotion, error) {
	emotion, err := s.emotions.FindByUserAndDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	if emotion == nil {
		emotion = &domain.DailyEmotion{UserID: user.ID, Date: date}
	}

	emotions, scores, summaries, keywords := alignEmotionSequences(edit)

	emotion.EmotionsJSON = encodeJSON(emotions)
	emotion.ScoresJSON = encodeJSON(scores)
	emotion.SummariesJSON = encodeJSON(summaries)
	emotion.KeywordsJSON = encodeJSON(keywords)

	primary, score := argmaxEmotion(emotions, scores)
	emotion.PrimaryEmotion = primary
	emotion.PrimaryScore = score
	emotion.RawText = edit.RawText

	if err := s.emotions.Save(ctx, emotion); err != nil {
		return nil, err
	}
	return emotion, nil
}

// alignEmotionSequences forces the four sequences to the length of the
// shorter of emotions/scores, padding summaries and keywords so the stored
// columns always decode to equal lengths.
func alignEmotionSequences(edit *domain.EmotionAnalysis) ([]string, []int, []string, [][]string) {
	n := len(edit.Emotions)
	if len(edit.Scores) < n {
		n = len(edit.Scores)
	}

	emotions := append([]string{}, edit.Emotions[:n]...)
	scores := append([]int{}, edit.Scores[:n]...)

	summaries := make([]string, n)
	copy(summaries, edit.Summaries)
	keywords := make([][]string, n)
	copy(keywords, edit.Keywords)
	for i := range keywords {
		if keywords[i] == nil {
			keywords[i] = []string{}
		}
	}
	return emotions, scores, summaries, keywords
}

// ToEmotionSummary decodes the stored aggregate into the response shape.
func ToEmotionSummary(emotion *domain.DailyEmotion) *domain.EmotionSummary {
	return &domain.EmotionSummary{
		Action:         domain.ActionAdd,
		PrimaryEmotion: emotion.PrimaryEmotion,
		PrimaryScore:   emotion.PrimaryScore,
		Emotions:       decodeStringList(emotion.EmotionsJSON),
		Scores:         decodeIntList(emotion.ScoresJSON),
		Summaries:      decodeStringList(emotion.SummariesJSON),
		Keywords:       decodeKeywordLists(emotion.KeywordsJSON),
		RawText:        emotion.RawText,
		Date:           emotion.Date.Format("2006-01-02"),
	}
}

func argmaxEmotion(emotions []string, scores []int) (string, int) {
	best, bestScore := "", 0
	for i, name := range emotions {
		if i >= len(scores) {
			break
		}
		if best == "" || scores[i] > bestScore {
			best, bestScore = name, scores[i]
		}
	}
	return best, bestScore
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeStringList(raw string) []string {
	var out []string
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func decodeIntList(raw string) []int {
	var out []int
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	if out == nil {
		out = []int{}
	}
	return out
}

func decodeKeywordLists(raw string) [][]string {
	var out [][]string
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	if out == nil {
		out = [][]string{}
	}
	return out
}
