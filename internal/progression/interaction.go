package progression

// InteractionState tracks the answer state of the question under the cursor.
type InteractionState int

const (
	Unanswered InteractionState = iota
	AnsweredCorrect
	AnsweredIncorrect
)

func (s InteractionState) String() string {
	switch s {
	case AnsweredCorrect:
		return "answered_correct"
	case AnsweredIncorrect:
		return "answered_incorrect"
	default:
		return "unanswered"
	}
}

// Feedback messages shown after an answer.
const (
	FeedbackCorrect   = "+50 XP, +10 GrowCoins ✅"
	FeedbackIncorrect = "Incorrect ❌"
)

func (s InteractionState) feedback() string {
	switch s {
	case AnsweredCorrect:
		return FeedbackCorrect
	case AnsweredIncorrect:
		return FeedbackIncorrect
	default:
		return ""
	}
}
