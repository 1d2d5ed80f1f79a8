package progress

import (
	"context"
	"slices"

	"cloud.google.com/go/firestore"

	"github.com/AnimationBenoit/mygrowverse/internal/progression"
)

// Document is the persisted shape of users/{userID}.
type Document struct {
	XP              int    `json:"xp" firestore:"xp" yaml:"xp"`
	Coins           int    `json:"coins" firestore:"coins" yaml:"coins"`
	Level           int    `json:"level" firestore:"level" yaml:"level"`
	TaskDone        bool   `json:"taskDone" firestore:"taskDone" yaml:"taskDone"`
	CorrectCount    int    `json:"correctCount" firestore:"correctCount" yaml:"correctCount"`
	WrongCount      int    `json:"wrongCount" firestore:"wrongCount" yaml:"wrongCount"`
	CurrentQ        int    `json:"currentQ" firestore:"currentQ" yaml:"currentQ"`
	PlantType       string `json:"plantType" firestore:"plantType" yaml:"plantType"`
	GrowthStage     int    `json:"growthStage" firestore:"growthStage" yaml:"growthStage"`
	LastTaskDate    string `json:"lastTaskDate" firestore:"lastTaskDate" yaml:"lastTaskDate"`
	CompletedLevels []int  `json:"completedLevels" firestore:"completedLevels" yaml:"completedLevels"`
}

// updates lists every field for a merge update.
func (d Document) updates() []firestore.Update {
	return []firestore.Update{
		{Path: "xp", Value: d.XP},
		{Path: "coins", Value: d.Coins},
		{Path: "level", Value: d.Level},
		{Path: "taskDone", Value: d.TaskDone},
		{Path: "correctCount", Value: d.CorrectCount},
		{Path: "wrongCount", Value: d.WrongCount},
		{Path: "currentQ", Value: d.CurrentQ},
		{Path: "plantType", Value: d.PlantType},
		{Path: "growthStage", Value: d.GrowthStage},
		{Path: "lastTaskDate", Value: d.LastTaskDate},
		{Path: "completedLevels", Value: d.CompletedLevels},
	}
}

// Repository is the document store holding one progression document per user.
type Repository interface {
	// GetDocument returns ErrNotFound when the user has no document yet.
	GetDocument(ctx context.Context, userID string) (Document, error)
	// SetDocument creates or fully replaces the document.
	SetDocument(ctx context.Context, userID string, doc Document) error
	// UpdateDocument merges doc into an existing document and returns ErrNotFound when it is missing.
	UpdateDocument(ctx context.Context, userID string, doc Document) error
}

// DayMarkers is the local fallback record of the last task day.
type DayMarkers interface {
	Get(ctx context.Context, owner string) (progression.Date, bool, error)
	Put(ctx context.Context, owner string, day progression.Date) error
}

// ToDocument converts an engine snapshot into its persisted form.
func ToDocument(s progression.Snapshot) Document {
	completed := s.CompletedLevels
	if completed == nil {
		completed = []int{}
	}
	return Document{
		XP:              s.XP,
		Coins:           s.Coins,
		Level:           s.Level,
		TaskDone:        s.TaskDone,
		CorrectCount:    s.CorrectCount,
		WrongCount:      s.WrongCount,
		CurrentQ:        s.QuizCursor,
		PlantType:       s.PlantType,
		GrowthStage:     s.GrowthStage,
		LastTaskDate:    s.LastTaskDate.String(),
		CompletedLevels: slices.Clone(completed),
	}
}

// FromDocument converts a stored document into a snapshot. Missing or
// unreadable fields fall back to their defaults; callers normalize the result.
func FromDocument(d Document) progression.Snapshot {
	last, err := progression.ParseDate(d.LastTaskDate)
	if err != nil {
		last = progression.Date{}
	}
	return progression.Snapshot{
		XP:              d.XP,
		Coins:           d.Coins,
		Level:           d.Level,
		QuizCursor:      d.CurrentQ,
		CorrectCount:    d.CorrectCount,
		WrongCount:      d.WrongCount,
		TaskDone:        d.TaskDone,
		PlantType:       d.PlantType,
		GrowthStage:     d.GrowthStage,
		LastTaskDate:    last,
		CompletedLevels: append([]int(nil), d.CompletedLevels...),
	}
}
