package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnimationBenoit/mygrowverse/internal/assets"
	"github.com/AnimationBenoit/mygrowverse/internal/progression"
	"github.com/AnimationBenoit/mygrowverse/shared/events"
)

// State is the lifecycle state of a session.
type State string

const (
	StateAnonymous State = "anonymous"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	// StateOffline means the load failed; play continues in memory and nothing is written.
	StateOffline State = "offline"
)

// Notification kinds emitted by the session itself, alongside the engine's event kinds.
const (
	KindStateChanged = "state_changed"
)

// LevelUpBanner is shown while a level-up is fresh.
const LevelUpBanner = "🌟 Level Up!"

const subscriberBuffer = 16

// Identity is a verified player.
type Identity struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
}

// Session serializes every transition of one client's engine.
type Session struct {
	id       string
	deviceID string
	cfg      *Config

	loadCtx    context.Context
	cancelLoad context.CancelFunc
	done       chan struct{}
	wake       chan struct{}
	wg         sync.WaitGroup

	mu          sync.Mutex
	engine      *progression.Engine
	identity    *Identity
	state       State
	generation  uint64
	lastActive  time.Time
	bannerUntil time.Time
	closed      bool
	pending     []persistJob
	subs        map[int]chan events.Notification
	nextSub     int
}

func newSession(cfg *Config, id, deviceID string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:         id,
		deviceID:   deviceID,
		cfg:        cfg,
		loadCtx:    ctx,
		cancelLoad: cancel,
		done:       make(chan struct{}),
		wake:       make(chan struct{}, 1),
		engine:     progression.NewEngine(cfg.Bank, progression.DemoSnapshot(cfg.Bank), true),
		state:      StateAnonymous,
		lastActive: cfg.Now(),
		subs:       make(map[int]chan events.Notification),
	}
	s.wg.Add(1)
	go s.persistLoop()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the bound identity, or nil for an anonymous session.
func (s *Session) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// LastActive returns the time of the last accepted intent.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) logger() *slog.Logger {
	return s.cfg.Logger.With(slog.String("sessionId", s.id))
}

func (s *Session) deviceOwner() string {
	if s.deviceID == "" {
		return ""
	}
	return "device:" + s.deviceID
}

// demoSnapshot builds the signed-out state, carrying the device's last task day.
func (s *Session) demoSnapshot(ctx context.Context) progression.Snapshot {
	snap := progression.DemoSnapshot(s.cfg.Bank)
	owner := s.deviceOwner()
	if owner == "" || s.cfg.Markers == nil {
		return snap
	}
	day, ok, err := s.cfg.Markers.Get(ctx, owner)
	if err != nil {
		s.logger().Warn("device day marker read failed", slog.Any("error", err))
		return snap
	}
	if ok {
		snap.LastTaskDate = day
	}
	return snap
}

func (s *Session) putDeviceMarker(ctx context.Context, day progression.Date) {
	owner := s.deviceOwner()
	if owner == "" || s.cfg.Markers == nil {
		return
	}
	if err := s.cfg.Markers.Put(ctx, owner, day); err != nil {
		s.logger().Warn("device day marker write failed", slog.Any("error", err))
	}
}

// startAnonymous puts the session on the demo state and runs the day check.
func (s *Session) startAnonymous(ctx context.Context) {
	snap := s.demoSnapshot(ctx)
	today := s.cfg.today()

	s.mu.Lock()
	s.engine.Restore(snap, true)
	s.engine.EvaluateDailyTask(today)
	s.publishLocked(s.engine.DrainEvents())
	s.mu.Unlock()

	s.putDeviceMarker(ctx, today)
}

// SignIn binds identity and loads its progress in the background. Intents
// are refused with ErrLoadPending until the load finishes. Signing in again
// as the bound user only refreshes the display name, unless the previous load
// failed, in which case the load is retried.
func (s *Session) SignIn(identity Identity) error {
	if identity.UserID == "" {
		return ErrIdentityRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.identity != nil && s.identity.UserID == identity.UserID && s.state != StateOffline {
		s.identity.DisplayName = identity.DisplayName
		return nil
	}

	s.generation++
	gen := s.generation
	s.identity = &identity
	s.engine.Restore(progression.DefaultSnapshot(s.cfg.Bank), false)
	s.setStateLocked(StateLoading)
	s.lastActive = s.cfg.Now()

	s.wg.Add(1)
	go s.load(gen, identity.UserID)
	return nil
}

// SignOut drops the identity and returns to the demo state. Loads still in
// flight for the previous identity are ignored when they complete.
func (s *Session) SignOut(ctx context.Context) error {
	snap := s.demoSnapshot(ctx)
	today := s.cfg.today()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.identity == nil {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	s.identity = nil
	s.engine.Restore(snap, true)
	s.engine.EvaluateDailyTask(today)
	s.setStateLocked(StateAnonymous)
	s.publishLocked(s.engine.DrainEvents())
	s.lastActive = s.cfg.Now()
	s.mu.Unlock()

	s.putDeviceMarker(ctx, today)
	return nil
}

func (s *Session) load(gen uint64, userID string) {
	defer s.wg.Done()

	today := s.cfg.today()
	res, err := s.cfg.Sync.LoadOrInit(s.loadCtx, userID, today)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		s.logger().Debug("discarding stale progress load", slog.String("userId", userID))
		return
	}
	if err != nil {
		s.logger().Warn("progress load failed, playing offline",
			slog.String("userId", userID), slog.Any("error", err))
		s.engine.Restore(progression.DefaultSnapshot(s.cfg.Bank), false)
		s.engine.EvaluateDailyTask(today)
		s.engine.DrainEvents()
		s.setStateLocked(StateOffline)
		return
	}

	s.engine.Restore(res.Snapshot, false)
	changed := s.engine.EvaluateDailyTask(today)
	s.setStateLocked(StateReady)
	s.publishLocked(s.engine.DrainEvents())
	if changed {
		s.schedulePersistLocked()
	}
	s.logger().Info("progress loaded",
		slog.String("userId", userID),
		slog.Bool("created", res.Created),
		slog.Int("level", res.Snapshot.Level))
}

// mutate applies fn to the engine, then publishes its events and schedules a write.
func (s *Session) mutate(fn func(e *progression.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.state == StateLoading {
		return ErrLoadPending
	}
	s.lastActive = s.cfg.Now()
	if err := fn(s.engine); err != nil {
		return err
	}
	s.publishLocked(s.engine.DrainEvents())
	s.schedulePersistLocked()
	return nil
}

// Answer scores option against the current question.
func (s *Session) Answer(option string) (progression.Outcome, error) {
	var out progression.Outcome
	err := s.mutate(func(e *progression.Engine) error {
		var err error
		out, err = e.AnswerQuestion(option)
		return err
	})
	return out, err
}

// NextQuestion moves the cursor forward.
func (s *Session) NextQuestion() error {
	return s.mutate(func(e *progression.Engine) error { return e.AdvanceQuestion() })
}

// PreviousQuestion moves the cursor back.
func (s *Session) PreviousQuestion() error {
	return s.mutate(func(e *progression.Engine) error { return e.RetreatQuestion() })
}

// CompleteDailyTask marks today's task done.
func (s *Session) CompleteDailyTask(ctx context.Context) error {
	today := s.cfg.today()
	var anonymous bool
	err := s.mutate(func(e *progression.Engine) error {
		anonymous = e.Anonymous()
		return e.CompleteDailyTask(today)
	})
	if err == nil && anonymous {
		s.putDeviceMarker(ctx, today)
	}
	return err
}

// SelectLevel opens level from the menu.
func (s *Session) SelectLevel(level int) error {
	return s.mutate(func(e *progression.Engine) error { return e.SelectLevel(level) })
}

// SelectPlant switches the grown plant.
func (s *Session) SelectPlant(plant string) error {
	return s.mutate(func(e *progression.Engine) error { return e.SelectPlant(plant) })
}

// Close stops the session's goroutines after flushing pending writes.
// Subscriber channels are closed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()

	s.cancelLoad()
	close(s.done)
	s.wg.Wait()
}

// Subscribe returns a channel of notifications and a function to stop
// receiving them. Slow subscribers miss notifications rather than block play.
func (s *Session) Subscribe() (<-chan events.Notification, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, nil, ErrClosed
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan events.Notification, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
	return ch, cancel, nil
}

func (s *Session) setStateLocked(state State) {
	if s.state == state {
		return
	}
	s.state = state
	s.broadcastLocked(events.Notification{Kind: KindStateChanged, Message: string(state)})
}

func (s *Session) publishLocked(evs []progression.Event) {
	for _, ev := range evs {
		n := events.Notification{Kind: string(ev.Kind), Level: ev.Level}
		switch ev.Kind {
		case progression.EventAnswerCorrect:
			n.Sound = assets.SoundCorrect
			n.Message = progression.FeedbackCorrect
		case progression.EventLevelUp:
			n.Sound = assets.SoundLevelUp
			n.Message = LevelUpBanner
			s.bannerUntil = s.cfg.Now().Add(s.cfg.BannerDuration)
		case progression.EventTaskCompleted:
			n.Message = "Daily task completed"
		case progression.EventStreakPenalty:
			n.Coins = ev.Coins
			n.Message = fmt.Sprintf("Missed daily task: -%d GrowCoins", ev.Coins)
		}
		s.broadcastLocked(n)
	}
}

func (s *Session) broadcastLocked(n events.Notification) {
	n.ID = uuid.NewString()
	n.SessionID = s.id
	n.At = s.cfg.Now()
	for _, ch := range s.subs {
		select {
		case ch <- n:
		default:
		}
	}
}
