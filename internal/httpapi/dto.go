package httpapi

import (
	"context"
	"log/slog"

	"github.com/AnimationBenoit/mygrowverse/internal/assets"
	"github.com/AnimationBenoit/mygrowverse/internal/progression"
	"github.com/AnimationBenoit/mygrowverse/internal/session"
)

type createSessionRequest struct {
	DeviceID string `json:"deviceId" validate:"omitempty,max=128"`
}

type answerRequest struct {
	Option string `json:"option" validate:"required"`
}

type levelRequest struct {
	Level int `json:"level" validate:"required,min=1"`
}

type plantRequest struct {
	Plant string `json:"plant" validate:"required"`
}

type levelDTO struct {
	Level         int      `json:"level"`
	Title         string   `json:"title,omitempty"`
	Featured      bool     `json:"featured,omitempty"`
	QuestionCount int      `json:"questionCount"`
	Tasks         []string `json:"tasks"`
}

type plantCatalogDTO struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Stages int      `json:"stages"`
	Images []string `json:"images"`
}

type userDTO struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
}

type statsDTO struct {
	XP           int    `json:"xp"`
	Coins        int    `json:"coins"`
	Level        int    `json:"level"`
	CorrectCount int    `json:"correctCount"`
	WrongCount   int    `json:"wrongCount"`
	TaskDone     bool   `json:"taskDone"`
	LastTaskDate string `json:"lastTaskDate,omitempty"`
}

type plantDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Stage    int    `json:"stage"`
	MaxStage int    `json:"maxStage"`
	Image    string `json:"image,omitempty"`
}

type questionDTO struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type sessionResponse struct {
	ID          string                    `json:"id"`
	State       string                    `json:"state"`
	User        *userDTO                  `json:"user,omitempty"`
	Stats       statsDTO                  `json:"stats"`
	Plant       plantDTO                  `json:"plant"`
	Question    *questionDTO              `json:"question,omitempty"`
	Interaction string                    `json:"interaction"`
	Feedback    string                    `json:"feedback,omitempty"`
	Progress    progression.LevelProgress `json:"progress"`
	Tasks       []string                  `json:"tasks"`
	Levels      []progression.LevelEntry  `json:"levels"`
	Banner      string                    `json:"banner,omitempty"`
	Sounds      map[string]string         `json:"sounds,omitempty"`
}

type answerResponse struct {
	Correct      bool            `json:"correct"`
	Feedback     string          `json:"feedback"`
	LevelsGained int             `json:"levelsGained,omitempty"`
	Session      sessionResponse `json:"session"`
}

func (h *Handler) sessionView(ctx context.Context, s *session.Session) sessionResponse {
	v := s.View()
	snap := v.Snapshot
	resp := sessionResponse{
		ID:    v.ID,
		State: string(v.State),
		Stats: statsDTO{
			XP:           snap.XP,
			Coins:        snap.Coins,
			Level:        snap.Level,
			CorrectCount: snap.CorrectCount,
			WrongCount:   snap.WrongCount,
			TaskDone:     snap.TaskDone,
			LastTaskDate: snap.LastTaskDate.String(),
		},
		Plant: plantDTO{
			ID:       v.Plant.ID,
			Label:    v.Plant.Label,
			Stage:    snap.GrowthStage,
			MaxStage: v.Plant.MaxStage(),
			Image:    h.stageImage(ctx, v.Plant.ID, snap.GrowthStage),
		},
		Interaction: v.Interaction.String(),
		Feedback:    v.Feedback,
		Progress:    v.Progress,
		Tasks:       v.Tasks,
		Levels:      v.Menu,
		Banner:      v.Banner,
		Sounds:      h.sounds(ctx),
	}
	if v.Identity != nil {
		resp.User = &userDTO{UserID: v.Identity.UserID, DisplayName: v.Identity.DisplayName}
	}
	if v.Question != nil {
		resp.Question = &questionDTO{
			Index:   v.QuestionIndex,
			Total:   v.Progress.QuestionCount,
			Prompt:  v.Question.Prompt,
			Options: v.Question.Options,
		}
	}
	return resp
}

func (h *Handler) stageImage(ctx context.Context, plant string, stage int) string {
	if h.assets == nil {
		return ""
	}
	url, err := h.assets.StageImage(ctx, plant, stage)
	if err != nil {
		h.logger.Warn("stage image unavailable", slog.String("plant", plant), slog.Int("stage", stage), slog.Any("error", err))
		return ""
	}
	return url
}

func (h *Handler) soundURL(ctx context.Context, name string) string {
	if h.assets == nil || name == "" {
		return ""
	}
	url, err := h.assets.Sound(ctx, name)
	if err != nil {
		h.logger.Warn("sound unavailable", slog.String("sound", name), slog.Any("error", err))
		return ""
	}
	return url
}

func (h *Handler) sounds(ctx context.Context) map[string]string {
	out := make(map[string]string, 2)
	for _, name := range []string{assets.SoundCorrect, assets.SoundLevelUp} {
		if url := h.soundURL(ctx, name); url != "" {
			out[name] = url
		}
	}
	return out
}
