package progression

// The functions below are the transition rules. They mutate only the snapshot
// they are given and never consult anything else.

func awardCorrectAnswer(s *Snapshot) {
	s.XP += XPPerCorrectAnswer
	s.Coins += CoinsPerCorrectAnswer
	s.CorrectCount++
}

func recordWrongAnswer(s *Snapshot) {
	s.WrongCount++
}

// evaluateLevelUp consumes every full threshold of XP, one level each, and
// returns the levels gained.
func evaluateLevelUp(s *Snapshot) int {
	gained := 0
	for s.XP >= LevelUpThreshold {
		s.markCompleted(s.Level)
		s.Level++
		s.XP -= LevelUpThreshold
		gained++
	}
	if gained > 0 {
		resetLevelProgress(s)
	}
	return gained
}

func resetLevelProgress(s *Snapshot) {
	s.QuizCursor = 0
	s.CorrectCount = 0
	s.WrongCount = 0
}

// deductCoins returns the amount actually removed.
func deductCoins(s *Snapshot, amount int) int {
	taken := min(amount, s.Coins)
	s.Coins -= taken
	return taken
}

func growPlant(s *Snapshot, maxStage int) {
	s.GrowthStage = min(s.GrowthStage+1, maxStage)
}

// rolloverDay applies the day-boundary rule. missed is true when a previous
// day had been recorded, in which case taken coins were charged.
func rolloverDay(s *Snapshot, today Date) (changed, missed bool, taken int) {
	if s.LastTaskDate == today {
		return false, false, 0
	}
	s.TaskDone = false
	if !s.LastTaskDate.IsZero() {
		missed = true
		taken = deductCoins(s, MissedTaskPenalty)
	}
	s.LastTaskDate = today
	return true, missed, taken
}
