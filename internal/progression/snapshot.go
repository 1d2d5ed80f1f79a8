package progression

import (
	"slices"

	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
)

// Scoring constants.
const (
	XPPerCorrectAnswer    = 50
	CoinsPerCorrectAnswer = 10
	LevelUpThreshold      = 1000
	MissedTaskPenalty     = 15
)

// Snapshot is the persisted progression record of one player.
type Snapshot struct {
	XP              int
	Coins           int
	Level           int
	QuizCursor      int
	CorrectCount    int
	WrongCount      int
	TaskDone        bool
	PlantType       string
	GrowthStage     int
	LastTaskDate    Date
	CompletedLevels []int
}

// DefaultSnapshot is the state written for a player seen for the first time.
func DefaultSnapshot(bank *quizbank.Bank) Snapshot {
	return Snapshot{
		Level:     1,
		PlantType: bank.DefaultPlant().ID,
	}
}

// DemoSnapshot is the state a signed-out visitor starts from.
func DemoSnapshot(bank *quizbank.Bank) Snapshot {
	s := DefaultSnapshot(bank)
	s.XP = 750
	s.Coins = 245
	return s
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	s.CompletedLevels = slices.Clone(s.CompletedLevels)
	return s
}

// IsCompleted reports whether level was marked completed by a level-up.
func (s Snapshot) IsCompleted(level int) bool {
	_, found := slices.BinarySearch(s.CompletedLevels, level)
	return found
}

func (s *Snapshot) markCompleted(level int) {
	i, found := slices.BinarySearch(s.CompletedLevels, level)
	if found {
		return
	}
	s.CompletedLevels = slices.Insert(s.CompletedLevels, i, level)
}

// Normalize repairs a snapshot read from storage so every invariant holds:
// counters are non-negative, level is at least 1, the plant is known and its
// stage in range, and the quiz cursor points at an existing question.
func Normalize(bank *quizbank.Bank, s Snapshot) Snapshot {
	s = s.Clone()
	if s.Level < 1 {
		s.Level = 1
	}
	s.XP = max(s.XP, 0)
	s.Coins = max(s.Coins, 0)
	s.CorrectCount = max(s.CorrectCount, 0)
	s.WrongCount = max(s.WrongCount, 0)

	plant, ok := bank.Plant(s.PlantType)
	if !ok {
		plant = bank.DefaultPlant()
		s.PlantType = plant.ID
		s.GrowthStage = 0
	}
	s.GrowthStage = min(max(s.GrowthStage, 0), plant.MaxStage())

	count := len(bank.QuestionsFor(s.Level))
	if count == 0 {
		s.QuizCursor = 0
	} else {
		s.QuizCursor = min(max(s.QuizCursor, 0), count-1)
	}

	levels := s.CompletedLevels[:0]
	for _, l := range s.CompletedLevels {
		if l >= 1 {
			levels = append(levels, l)
		}
	}
	slices.Sort(levels)
	s.CompletedLevels = slices.Compact(levels)
	if len(s.CompletedLevels) == 0 {
		s.CompletedLevels = nil
	}
	return s
}
