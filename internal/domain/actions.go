package domain

import "strings"

// Action is the closed discriminator applied to a day aggregate. The model
// emits it as free text; ParseAction is the only place that string is trusted.
type Action string

const (
	ActionAdd     Action = "add"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionReplace Action = "replace"
	ActionError   Action = "error"
)

// ParseAction maps a raw model string onto the closed action set. The second
// return value is false for anything unrecognized.
func ParseAction(raw string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionAdd:
		return ActionAdd, true
	case ActionUpdate:
		return ActionUpdate, true
	case ActionDelete:
		return ActionDelete, true
	case ActionReplace:
		return ActionReplace, true
	case ActionError:
		return ActionError, true
	}
	return ActionError, false
}

// MealAnalysis is the meal analyzer's discriminated result.
type MealAnalysis struct {
	Action        Action     `json:"action"`
	TargetMeal    string     `json:"targetMeal,omitempty"` // empty: several/unspecified slots
	Meals         []MealSlot `json:"meals"`
	TotalCalories float64    `json:"totalCalories"`
	TotalProtein  float64    `json:"totalProtein"`
	TotalFat      float64    `json:"totalFat"`
	TotalCarbs    float64    `json:"totalCarbs"`
	Message       string     `json:"message,omitempty"`
}

// MealDeleted is the canonical placeholder for a deleted meal record.
func MealDeleted() *MealAnalysis {
	return &MealAnalysis{Action: ActionDelete, Meals: []MealSlot{}, Message: "meal record deleted"}
}

// MealEmpty is the canonical placeholder when the input carried no meal content.
func MealEmpty() *MealAnalysis {
	return &MealAnalysis{Action: ActionAdd, Meals: []MealSlot{}}
}

// ExerciseAnalysis is the exercise analyzer's discriminated result. Exercises
// carries only the delta the user just reported; DeleteTargets is consulted by
// delete and replace only.
type ExerciseAnalysis struct {
	Action        Action         `json:"action"`
	Exercises     []ExerciseItem `json:"exercises"`
	DeleteTargets []string       `json:"deleteTargets,omitempty"`
	TotalCalories float64        `json:"totalCalories"`
	TotalDuration float64        `json:"totalDuration"`
	Message       string         `json:"message,omitempty"`
}

// ExerciseDeleted is the canonical placeholder for a deleted exercise record.
func ExerciseDeleted() *ExerciseAnalysis {
	return &ExerciseAnalysis{Action: ActionDelete, Exercises: []ExerciseItem{}, Message: "exercise record deleted"}
}

// EmotionAnalysis is the emotion analyzer's result for one message. The four
// slices are parallel; accumulation into the day's history happens during
// reconciliation, not here.
type EmotionAnalysis struct {
	Action         Action     `json:"action"`
	Emotions       []string   `json:"emotions"`
	Scores         []int      `json:"scores"`
	Summaries      []string   `json:"summaries"`
	Keywords       [][]string `json:"keywords"`
	PrimaryEmotion string     `json:"primaryEmotion"`
	PrimaryScore   int        `json:"primaryScore"`
	RawText        string     `json:"rawText"`
}

// EmotionSummary is the persisted, merged emotion view returned to callers.
type EmotionSummary struct {
	Action         Action     `json:"action"`
	PrimaryEmotion string     `json:"primaryEmotion"`
	PrimaryScore   int        `json:"primaryScore"`
	Emotions       []string   `json:"emotions"`
	Scores         []int      `json:"scores"`
	Summaries      []string   `json:"summaries"`
	Keywords       [][]string `json:"keywords"`
	RawText        string     `json:"rawText"`
	Date           string     `json:"date,omitempty"`
}

// EmotionDeleted is the canonical placeholder for a deleted emotion record.
func EmotionDeleted() *EmotionSummary {
	return &EmotionSummary{
		Action:    ActionDelete,
		Emotions:  []string{},
		Scores:    []int{},
		Summaries: []string{},
		Keywords:  [][]string{},
	}
}

// UnifiedResult combines the three domain results for one analyzed message.
type UnifiedResult struct {
	Meal     *MealAnalysis     `json:"mealAnalysis"`
	Exercise *ExerciseAnalysis `json:"exerciseAnalysis"`
	Emotion  *EmotionSummary   `json:"emotionAnalysis"`
}

// RoutingResult is the intent router's split of one input message. Each field
// is empty, a deletion sentinel, or the substring relevant to that domain.
type RoutingResult struct {
	MealText     string `json:"mealText"`
	ExerciseText string `json:"exerciseText"`
	EmotionText  string `json:"emotionText"`
}

// Deletion sentinels emitted by the router.
const (
	DeleteMealSentinel     = "DELETE_MEAL"
	DeleteExerciseSentinel = "DELETE_EXERCISE"
	DeleteEmotionSentinel  = "DELETE_EMOTION"
)

// IsFullDelete reports whether the router flagged all three domains for
// deletion at once, which maps to wiping the whole day.
func (r RoutingResult) IsFullDelete() bool {
	return r.MealText == DeleteMealSentinel &&
		r.ExerciseText == DeleteExerciseSentinel &&
		r.EmotionText == DeleteEmotionSentinel
}
