package session

import (
	"context"
	"log/slog"

	"github.com/AnimationBenoit/mygrowverse/internal/progression"
)

type persistJob struct {
	generation uint64
	userID     string
	snap       progression.Snapshot
}

// schedulePersistLocked queues the current snapshot for writing. Only the
// latest snapshot per user is kept; jobs for a previous identity stay queued
// so its last change still lands.
func (s *Session) schedulePersistLocked() {
	if s.state != StateReady || s.identity == nil {
		return
	}
	job := persistJob{generation: s.generation, userID: s.identity.UserID, snap: s.engine.Snapshot()}
	if n := len(s.pending); n > 0 && s.pending[n-1].userID == job.userID {
		s.pending[n-1] = job
	} else {
		s.pending = append(s.pending, job)
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// persistLoop is the session's single writer. Writes happen one at a time in
// scheduling order; remaining jobs are flushed on close.
func (s *Session) persistLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.wake:
			s.writePending()
		case <-s.done:
			s.writePending()
			return
		}
	}
}

func (s *Session) writePending() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		job := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.write(job)
	}
}

func (s *Session) write(job persistJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()

	err := s.cfg.Sync.Persist(ctx, job.userID, job.snap)
	if err == nil {
		return
	}

	s.mu.Lock()
	stale := job.generation != s.generation
	s.mu.Unlock()
	log := s.logger().With(slog.String("userId", job.userID), slog.Any("error", err))
	if stale {
		log.Debug("progress write for previous identity failed")
		return
	}
	log.Warn("progress write failed")
}
