package progression

import "math"

// LevelProgress summarises play on the current level.
type LevelProgress struct {
	Level         int  `json:"level"`
	QuestionCount int  `json:"questionCount"`
	Answered      int  `json:"answered"`
	Percent       int  `json:"percent"`
	Correct       int  `json:"correct"`
	Wrong         int  `json:"wrong"`
	Grade         int  `json:"grade"`
	Completed     bool `json:"completed"`
}

// LevelEntry is one row of the level menu.
type LevelEntry struct {
	Level     int    `json:"level"`
	Title     string `json:"title,omitempty"`
	Unlocked  bool   `json:"unlocked"`
	Current   bool   `json:"current"`
	Completed bool   `json:"completed"`
	Featured  bool   `json:"featured,omitempty"`
}

// Progress reports how far the player is through the current level. A
// question counts as reached once it is answered or the cursor has moved past
// the first one.
func (e *Engine) Progress() LevelProgress {
	count := len(e.Questions())
	p := LevelProgress{
		Level:         e.snap.Level,
		QuestionCount: count,
		Correct:       e.snap.CorrectCount,
		Wrong:         e.snap.WrongCount,
		Completed:     e.snap.IsCompleted(e.snap.Level),
	}
	if count == 0 {
		return p
	}

	if e.snap.QuizCursor > 0 || e.state != Unanswered {
		p.Answered = e.snap.QuizCursor + 1
	}
	p.Percent = roundPercent(p.Answered, count)
	p.Grade = min(roundPercent(e.snap.CorrectCount, max(p.Answered, 1)), 100)
	return p
}

// LevelMenu lists every level of the menu with its lock state.
func (e *Engine) LevelMenu() []LevelEntry {
	n := e.bank.LevelCount()
	out := make([]LevelEntry, 0, n)
	for l := 1; l <= n; l++ {
		def, _ := e.bank.Level(l)
		out = append(out, LevelEntry{
			Level:     l,
			Title:     def.Title,
			Unlocked:  e.CanSelectLevel(l),
			Current:   l == e.snap.Level,
			Completed: e.snap.IsCompleted(l),
			Featured:  def.Featured,
		})
	}
	return out
}

func roundPercent(part, whole int) int {
	return int(math.Floor(float64(part)/float64(whole)*100 + 0.5))
}
