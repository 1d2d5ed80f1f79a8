package progression

// EventKind names a notification for the presentation layer.
type EventKind string

const (
	EventAnswerCorrect EventKind = "answer_correct"
	EventLevelUp       EventKind = "level_up"
	EventTaskCompleted EventKind = "task_completed"
	EventStreakPenalty EventKind = "streak_penalty"
)

// Event is emitted by a transition. Level is the level reached for level-ups;
// Coins is the amount charged for streak penalties.
type Event struct {
	Kind  EventKind
	Level int
	Coins int
}
