package session

import (
	"github.com/AnimationBenoit/mygrowverse/internal/progression"
	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
)

// View is a consistent read of everything a client renders.
type View struct {
	ID            string
	State         State
	Identity      *Identity
	Snapshot      progression.Snapshot
	Question      *quizbank.Question
	QuestionIndex int
	Interaction   progression.InteractionState
	Feedback      string
	Progress      progression.LevelProgress
	Tasks         []string
	Menu          []progression.LevelEntry
	Plant         quizbank.Plant
	Banner        string
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.engine.Snapshot()
	plant, _ := s.cfg.Bank.Plant(snap.PlantType)
	v := View{
		ID:            s.id,
		State:         s.state,
		Snapshot:      snap,
		QuestionIndex: snap.QuizCursor,
		Interaction:   s.engine.Interaction(),
		Feedback:      s.engine.Feedback(),
		Progress:      s.engine.Progress(),
		Tasks:         s.cfg.Bank.TasksFor(snap.Level),
		Menu:          s.engine.LevelMenu(),
		Plant:         plant,
	}
	if s.identity != nil {
		id := *s.identity
		v.Identity = &id
	}
	if q, ok := s.engine.CurrentQuestion(); ok {
		v.Question = &q
	}
	if s.cfg.Now().Before(s.bannerUntil) {
		v.Banner = LevelUpBanner
	}
	return v
}
