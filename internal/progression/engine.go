package progression

import (
	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
)

// Outcome reports the result of an answer.
type Outcome struct {
	Correct      bool
	Feedback     string
	LevelsGained int
}

// Engine owns one player's snapshot and applies intents to it. It is not safe
// for concurrent use; callers serialize access.
type Engine struct {
	bank      *quizbank.Bank
	snap      Snapshot
	anonymous bool
	state     InteractionState
	events    []Event
}

// NewEngine returns an engine over a normalized copy of snap.
func NewEngine(bank *quizbank.Bank, snap Snapshot, anonymous bool) *Engine {
	return &Engine{
		bank:      bank,
		snap:      Normalize(bank, snap),
		anonymous: anonymous,
	}
}

// Snapshot returns a copy of the current snapshot.
func (e *Engine) Snapshot() Snapshot {
	return e.snap.Clone()
}

// Restore replaces the snapshot, e.g. after a load, and forgets pending
// feedback and events.
func (e *Engine) Restore(snap Snapshot, anonymous bool) {
	e.snap = Normalize(e.bank, snap)
	e.anonymous = anonymous
	e.state = Unanswered
	e.events = nil
}

// Anonymous reports whether the engine plays for a signed-out visitor.
func (e *Engine) Anonymous() bool { return e.anonymous }

// Interaction returns the answer state of the current question.
func (e *Engine) Interaction() InteractionState { return e.state }

// Feedback is the message shown for the pending answer, or "".
func (e *Engine) Feedback() string { return e.state.feedback() }

// Bank returns the quiz bank the engine plays.
func (e *Engine) Bank() *quizbank.Bank { return e.bank }

// Questions returns the current level's questions.
func (e *Engine) Questions() []quizbank.Question {
	return e.bank.QuestionsFor(e.snap.Level)
}

// CurrentQuestion returns the question under the cursor.
func (e *Engine) CurrentQuestion() (quizbank.Question, bool) {
	questions := e.Questions()
	if len(questions) == 0 {
		return quizbank.Question{}, false
	}
	return questions[e.snap.QuizCursor], true
}

// DrainEvents returns the events emitted since the last drain.
func (e *Engine) DrainEvents() []Event {
	out := e.events
	e.events = nil
	return out
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
}

// AnswerQuestion scores option against the current question. A second answer
// is refused until the cursor moves.
func (e *Engine) AnswerQuestion(option string) (Outcome, error) {
	q, ok := e.CurrentQuestion()
	if !ok {
		return Outcome{}, ErrNoActiveQuestion
	}
	if e.state != Unanswered {
		return Outcome{}, ErrAnswerPending
	}
	if !q.HasOption(option) {
		return Outcome{}, ErrUnknownOption
	}

	if option != q.Correct {
		recordWrongAnswer(&e.snap)
		e.state = AnsweredIncorrect
		return Outcome{Feedback: FeedbackIncorrect}, nil
	}

	awardCorrectAnswer(&e.snap)
	e.state = AnsweredCorrect
	e.emit(Event{Kind: EventAnswerCorrect, Level: e.snap.Level})
	out := Outcome{Correct: true, Feedback: FeedbackCorrect}
	out.LevelsGained = e.EvaluateLevelUp()
	return out, nil
}

// EvaluateLevelUp converts every full 1000 XP into one level. It runs after
// each XP award and returns the number of levels gained.
func (e *Engine) EvaluateLevelUp() int {
	from := e.snap.Level
	gained := evaluateLevelUp(&e.snap)
	for l := from + 1; l <= from+gained; l++ {
		e.emit(Event{Kind: EventLevelUp, Level: l})
	}
	if gained > 0 {
		e.state = Unanswered
	}
	return gained
}

// OnLevelChanged resets the per-level counters after a level change.
func (e *Engine) OnLevelChanged(newLevel int) {
	e.snap.Level = newLevel
	resetLevelProgress(&e.snap)
	e.state = Unanswered
}

// AdvanceQuestion moves to the next question once the current one was answered correctly.
func (e *Engine) AdvanceQuestion() error {
	questions := e.Questions()
	if len(questions) == 0 {
		return ErrNoActiveQuestion
	}
	if e.state != AnsweredCorrect {
		return ErrNextLocked
	}
	if e.snap.QuizCursor+1 >= len(questions) {
		return ErrQuestionOutOfRange
	}
	e.snap.QuizCursor++
	e.state = Unanswered
	return nil
}

// RetreatQuestion moves back one question regardless of the answer state.
// On the first question the cursor stays put and the question reopens.
func (e *Engine) RetreatQuestion() error {
	if len(e.Questions()) == 0 {
		return ErrNoActiveQuestion
	}
	if e.snap.QuizCursor > 0 {
		e.snap.QuizCursor--
	}
	e.state = Unanswered
	return nil
}

// EvaluateDailyTask applies the day boundary on session start. When today
// differs from the last recorded day the task is reopened, and if a day had
// been recorded at all the missed-task penalty is charged.
func (e *Engine) EvaluateDailyTask(today Date) bool {
	changed, missed, taken := rolloverDay(&e.snap, today)
	if missed {
		e.emit(Event{Kind: EventStreakPenalty, Level: e.snap.Level, Coins: taken})
	}
	return changed
}

// CompleteDailyTask marks today's task done and grows the plant one stage.
func (e *Engine) CompleteDailyTask(today Date) error {
	if e.snap.TaskDone {
		return ErrTaskAlreadyDone
	}
	plant, _ := e.bank.Plant(e.snap.PlantType)
	e.snap.TaskDone = true
	growPlant(&e.snap, plant.MaxStage())
	e.snap.LastTaskDate = today
	e.emit(Event{Kind: EventTaskCompleted, Level: e.snap.Level})
	return nil
}

// CanSelectLevel reports whether target may be opened from the level menu.
func (e *Engine) CanSelectLevel(target int) bool {
	if target < 1 || target > e.bank.LevelCount() || e.bank.IsFeatured(target) {
		return false
	}
	return target <= e.snap.Level ||
		(e.anonymous && target <= e.bank.AnonymousLevelCap()) ||
		e.snap.IsCompleted(target)
}

// SelectLevel opens target. Re-selecting the current level changes nothing.
func (e *Engine) SelectLevel(target int) error {
	if !e.CanSelectLevel(target) {
		return ErrLevelLocked
	}
	if target == e.snap.Level {
		return nil
	}
	e.OnLevelChanged(target)
	return nil
}

// SelectPlant switches the plant and restarts its growth.
func (e *Engine) SelectPlant(id string) error {
	if _, ok := e.bank.Plant(id); !ok {
		return ErrUnknownPlant
	}
	e.snap.PlantType = id
	e.snap.GrowthStage = 0
	return nil
}
