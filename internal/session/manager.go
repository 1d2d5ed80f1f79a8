// Package session runs game sessions: one engine per connected client, the
// identity bound to it, and the background load and persist of its progress.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnimationBenoit/mygrowverse/internal/progress"
	"github.com/AnimationBenoit/mygrowverse/internal/progression"
	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
)

const (
	defaultBannerDuration = 2 * time.Second
	defaultPersistTimeout = 10 * time.Second
	defaultIdleTimeout    = 30 * time.Minute
)

// Syncer loads and stores a signed-in player's snapshot.
type Syncer interface {
	LoadOrInit(ctx context.Context, userID string, today progression.Date) (progress.LoadResult, error)
	Persist(ctx context.Context, userID string, snap progression.Snapshot) error
}

// Config holds the dependencies shared by every session.
type Config struct {
	Bank *quizbank.Bank
	Sync Syncer
	// Markers records the last task day of anonymous devices. Optional.
	Markers        progress.DayMarkers
	Location       *time.Location
	IdleTimeout    time.Duration
	BannerDuration time.Duration
	PersistTimeout time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

func (c *Config) setDefaults() {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.BannerDuration <= 0 {
		c.BannerDuration = defaultBannerDuration
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = defaultPersistTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

func (c *Config) today() progression.Date {
	return progression.DateOf(c.Now().In(c.Location))
}

// Manager owns the live sessions.
type Manager struct {
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager validates cfg and returns an empty manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Bank == nil {
		return nil, errors.New("session manager requires a quiz bank")
	}
	if cfg.Sync == nil {
		return nil, errors.New("session manager requires a progress syncer")
	}
	cfg.setDefaults()
	return &Manager{cfg: cfg, sessions: make(map[string]*Session)}, nil
}

// Create starts a session. With a non-nil identity the player's progress is
// loaded in the background; otherwise the session plays the demo state.
// deviceID, when set, keys the anonymous day marker.
func (m *Manager) Create(ctx context.Context, identity *Identity, deviceID string) (*Session, error) {
	if identity != nil && identity.UserID == "" {
		return nil, ErrIdentityRequired
	}
	s := newSession(&m.cfg, uuid.NewString(), deviceID)
	if identity == nil {
		s.startAnonymous(ctx)
	} else if err := s.SignIn(*identity); err != nil {
		s.Close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.cfg.Logger.Info("session created",
		slog.String("sessionId", s.id),
		slog.Bool("authenticated", identity != nil))
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout and returns how many were closed.
func (m *Manager) Sweep(now time.Time) int {
	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > m.cfg.IdleTimeout {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		m.cfg.Logger.Info("idle sessions closed", slog.Int("count", len(idle)))
	}
	return len(idle)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.cfg.Now())
		}
	}
}

// Close closes every session, flushing pending writes.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range all {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Close()
		}()
	}
	wg.Wait()
}
