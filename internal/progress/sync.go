package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AnimationBenoit/mygrowverse/internal/progression"
	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
)

// LoadResult is the outcome of LoadOrInit.
type LoadResult struct {
	Snapshot progression.Snapshot
	// Created is true when no document existed and defaults were written.
	Created bool
	// DayFromMarker is true when the last task day came from the local marker.
	DayFromMarker bool
}

// SyncAdapter moves snapshots between the engine and the document store.
type SyncAdapter struct {
	repo    Repository
	markers DayMarkers
	bank    *quizbank.Bank
	logger  *slog.Logger
}

// NewSyncAdapter wires a repository and an optional local day-marker store.
func NewSyncAdapter(repo Repository, markers DayMarkers, bank *quizbank.Bank, logger *slog.Logger) *SyncAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SyncAdapter{repo: repo, markers: markers, bank: bank, logger: logger}
}

// MarkerOwner names the day-marker slot of a signed-in user.
func MarkerOwner(userID string) string {
	return "user:" + userID
}

// LoadOrInit reads the user's document, creating it with defaults when absent.
// The stored lastTaskDate is authoritative; the local marker only fills in
// for documents that lack one, and is refreshed from the loaded value.
func (s *SyncAdapter) LoadOrInit(ctx context.Context, userID string, today progression.Date) (LoadResult, error) {
	if userID == "" {
		return LoadResult{}, ErrMissingUserID
	}

	var (
		doc       Document
		docErr    error
		marker    progression.Date
		hasMarker bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, docErr = s.repo.GetDocument(gctx, userID)
		if docErr != nil && !errors.Is(docErr, ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrStoreRead, docErr)
		}
		return nil
	})
	if s.markers != nil {
		g.Go(func() error {
			d, ok, err := s.markers.Get(gctx, MarkerOwner(userID))
			if err != nil {
				s.logger.Warn("day marker read failed", slog.String("userId", userID), slog.Any("error", err))
				return nil
			}
			marker, hasMarker = d, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LoadResult{}, err
	}

	var res LoadResult
	if errors.Is(docErr, ErrNotFound) {
		snap := progression.DefaultSnapshot(s.bank)
		snap.LastTaskDate = today
		if err := s.repo.SetDocument(ctx, userID, ToDocument(snap)); err != nil {
			return LoadResult{}, fmt.Errorf("%w: create: %w", ErrStoreWrite, err)
		}
		res = LoadResult{Snapshot: snap, Created: true}
	} else {
		snap := FromDocument(doc)
		if snap.LastTaskDate.IsZero() && hasMarker {
			snap.LastTaskDate = marker
			res.DayFromMarker = true
		}
		res.Snapshot = progression.Normalize(s.bank, snap)
	}

	s.refreshMarker(ctx, userID, res.Snapshot.LastTaskDate)
	return res, nil
}

// Persist writes every snapshot field to the user's document. A document that
// disappeared since the load is recreated.
func (s *SyncAdapter) Persist(ctx context.Context, userID string, snap progression.Snapshot) error {
	if userID == "" {
		return ErrMissingUserID
	}
	doc := ToDocument(snap)
	err := s.repo.UpdateDocument(ctx, userID, doc)
	if errors.Is(err, ErrNotFound) {
		err = s.repo.SetDocument(ctx, userID, doc)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	s.refreshMarker(ctx, userID, snap.LastTaskDate)
	return nil
}

// Reset overwrites the user's document with a fresh default snapshot.
func (s *SyncAdapter) Reset(ctx context.Context, userID string, today progression.Date) (progression.Snapshot, error) {
	if userID == "" {
		return progression.Snapshot{}, ErrMissingUserID
	}
	snap := progression.DefaultSnapshot(s.bank)
	snap.LastTaskDate = today
	if err := s.repo.SetDocument(ctx, userID, ToDocument(snap)); err != nil {
		return progression.Snapshot{}, fmt.Errorf("%w: reset: %w", ErrStoreWrite, err)
	}
	s.refreshMarker(ctx, userID, today)
	return snap, nil
}

// Get reads the user's current snapshot without creating anything.
func (s *SyncAdapter) Get(ctx context.Context, userID string) (progression.Snapshot, error) {
	doc, err := s.repo.GetDocument(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMissingUserID) {
			return progression.Snapshot{}, err
		}
		return progression.Snapshot{}, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return progression.Normalize(s.bank, FromDocument(doc)), nil
}

func (s *SyncAdapter) refreshMarker(ctx context.Context, userID string, day progression.Date) {
	if s.markers == nil || day.IsZero() {
		return
	}
	if err := s.markers.Put(ctx, MarkerOwner(userID), day); err != nil {
		s.logger.Warn("day marker write failed", slog.String("userId", userID), slog.Any("error", err))
	}
}
