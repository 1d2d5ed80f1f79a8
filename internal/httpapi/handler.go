package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/AnimationBenoit/mygrowverse/internal/assets"
	"github.com/AnimationBenoit/mygrowverse/internal/progression"
	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
	"github.com/AnimationBenoit/mygrowverse/internal/session"
	"github.com/AnimationBenoit/mygrowverse/shared/auth"
	sharederrors "github.com/AnimationBenoit/mygrowverse/shared/errors"
	"github.com/AnimationBenoit/mygrowverse/shared/logging"
)

const (
	serviceTimeout = 8 * time.Second
	maxBodyBytes   = 16 * 1024
)

type ctxKey string

const sessionCtxKey ctxKey = "mygrowverse:session"

// Handler serves the game API.
type Handler struct {
	bank     *quizbank.Bank
	manager  *session.Manager
	verifier auth.Verifier
	assets   assets.Resolver
	logger   *slog.Logger
	validate *validator.Validate
	upgrader websocket.Upgrader
}

// NewHandler wires the API over a session manager.
func NewHandler(bank *quizbank.Bank, manager *session.Manager, verifier auth.Verifier, resolver assets.Resolver, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		bank:     bank,
		manager:  manager,
		verifier: verifier,
		assets:   resolver,
		logger:   logger,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers all game routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(serviceTimeout))

			r.Get("/levels", h.listLevels)
			r.Get("/plants", h.listPlants)

			r.With(auth.Optional(h.verifier)).Post("/sessions", h.createSession)
		})

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(tokenFromQuery)
			r.Use(auth.Optional(h.verifier))
			r.Use(h.loadSession)

			r.Group(func(r chi.Router) {
				r.Use(h.requireBoundIdentity)
				r.Get("/events", h.streamEvents)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Timeout(serviceTimeout))

					r.Get("/", h.getSession)
					r.Delete("/", h.deleteSession)
					// A signed-in session can only be re-bound by its own player; switching players needs a sign-out first.
					r.Put("/identity", h.signIn)
					r.Delete("/identity", h.signOut)
					r.Post("/answers", h.answer)
					r.Post("/questions/next", h.nextQuestion)
					r.Post("/questions/previous", h.previousQuestion)
					r.Post("/daily-task", h.completeDailyTask)
					r.Put("/level", h.selectLevel)
					r.Put("/plant", h.selectPlant)
				})
			})
		})
	})
}

// tokenFromQuery lets browser websocket clients, which cannot set headers,
// pass the bearer token as ?access_token=.
func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.URL.Query().Get("access_token"); token != "" && r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := h.manager.Get(chi.URLParam(r, "id"))
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionCtxKey, s)))
	})
}

// requireBoundIdentity allows a request on a signed-in session only with a token for that same user.
func (h *Handler) requireBoundIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bound := sessionFrom(r).Identity()
		if bound == nil {
			next.ServeHTTP(w, r)
			return
		}
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeError(w, r, sharederrors.CodeUnauthorized, "session is bound to a signed-in player")
			return
		}
		if user.UserID != bound.UserID {
			writeError(w, r, sharederrors.CodeForbidden, "session belongs to another player")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionCtxKey).(*session.Session)
	return s
}

func (h *Handler) listLevels(w http.ResponseWriter, r *http.Request) {
	defs := h.bank.Levels()
	out := make([]levelDTO, 0, len(defs))
	for _, def := range defs {
		out = append(out, levelDTO{
			Level:         def.Level,
			Title:         def.Title,
			Featured:      def.Featured,
			QuestionCount: len(def.Questions),
			Tasks:         h.bank.TasksFor(def.Level),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"levelCount":        h.bank.LevelCount(),
		"anonymousLevelCap": h.bank.AnonymousLevelCap(),
		"levels":            out,
	})
}

func (h *Handler) listPlants(w http.ResponseWriter, r *http.Request) {
	plants := h.bank.Plants()
	out := make([]plantCatalogDTO, 0, len(plants))
	for _, p := range plants {
		images := make([]string, 0, p.Stages)
		for stage := 0; stage < p.Stages; stage++ {
			images = append(images, h.stageImage(r.Context(), p.ID, stage))
		}
		out = append(out, plantCatalogDTO{ID: p.ID, Label: p.Label, Stages: p.Stages, Images: images})
	}
	writeJSON(w, http.StatusOK, map[string]any{"plants": out})
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &body) {
			return
		}
	}

	var identity *session.Identity
	if user, ok := auth.UserFromContext(r.Context()); ok {
		identity = &session.Identity{UserID: user.UserID, DisplayName: user.DisplayName}
	}

	s, err := h.manager.Create(r.Context(), identity, strings.TrimSpace(body.DeviceID))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.sessionView(r.Context(), s))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionView(r.Context(), sessionFrom(r)))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(sessionFrom(r).ID()); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, sharederrors.CodeUnauthorized, "sign-in requires a bearer token")
		return
	}
	s := sessionFrom(r)
	if err := s.SignIn(session.Identity{UserID: user.UserID, DisplayName: user.DisplayName}); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.sessionView(r.Context(), s))
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := s.SignOut(r.Context()); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView(r.Context(), s))
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var body answerRequest
	if !h.decode(w, r, &body) {
		return
	}
	s := sessionFrom(r)
	out, err := s.Answer(body.Option)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Correct:      out.Correct,
		Feedback:     out.Feedback,
		LevelsGained: out.LevelsGained,
		Session:      h.sessionView(r.Context(), s),
	})
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *session.Session) error { return s.NextQuestion() })
}

func (h *Handler) previousQuestion(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *session.Session) error { return s.PreviousQuestion() })
}

func (h *Handler) completeDailyTask(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(s *session.Session) error { return s.CompleteDailyTask(r.Context()) })
}

func (h *Handler) selectLevel(w http.ResponseWriter, r *http.Request) {
	var body levelRequest
	if !h.decode(w, r, &body) {
		return
	}
	h.apply(w, r, func(s *session.Session) error { return s.SelectLevel(body.Level) })
}

func (h *Handler) selectPlant(w http.ResponseWriter, r *http.Request) {
	var body plantRequest
	if !h.decode(w, r, &body) {
		return
	}
	h.apply(w, r, func(s *session.Session) error { return s.SelectPlant(body.Plant) })
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	s := sessionFrom(r)
	if err := fn(s); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView(r.Context(), s))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, sharederrors.CodeBadRequest, "invalid JSON payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, r, sharederrors.CodeBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrClosed):
		writeError(w, r, sharederrors.CodeNotFound, "session not found")
	case errors.Is(err, session.ErrLoadPending):
		writeError(w, r, sharederrors.CodeLoadPending, err.Error())
	case errors.Is(err, session.ErrIdentityRequired):
		writeError(w, r, sharederrors.CodeBadRequest, err.Error())
	case errors.Is(err, progression.ErrLevelLocked):
		writeError(w, r, sharederrors.CodeLevelLocked, err.Error())
	case errors.Is(err, progression.ErrInvalidTransition):
		writeError(w, r, sharederrors.CodeInvalidTransition, err.Error())
	default:
		logRequestError(r.Context(), h.logger, "request failed", err)
		writeError(w, r, sharederrors.CodeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, sharederrors.ToStatusCode(code), sharederrors.ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error) {
	if logger == nil || err == nil {
		return
	}
	attrs := []any{slog.Any("error", err)}
	if user, ok := auth.UserFromContext(ctx); ok {
		attrs = append(attrs, slog.String("userId", user.UserID))
	}
	logging.WithRequestID(ctx, logger).Error(message, attrs...)
}
