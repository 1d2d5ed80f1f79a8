package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnimationBenoit/mygrowverse/internal/progression"
	"github.com/AnimationBenoit/mygrowverse/internal/quizbank"
)

type fakeRepo struct {
	getDocumentFn    func(context.Context, string) (Document, error)
	setDocumentFn    func(context.Context, string, Document) error
	updateDocumentFn func(context.Context, string, Document) error
}

func (f *fakeRepo) GetDocument(ctx context.Context, userID string) (Document, error) {
	if f.getDocumentFn != nil {
		return f.getDocumentFn(ctx, userID)
	}
	return Document{}, errors.New("getDocumentFn not provided")
}

func (f *fakeRepo) SetDocument(ctx context.Context, userID string, doc Document) error {
	if f.setDocumentFn != nil {
		return f.setDocumentFn(ctx, userID, doc)
	}
	return errors.New("setDocumentFn not provided")
}

func (f *fakeRepo) UpdateDocument(ctx context.Context, userID string, doc Document) error {
	if f.updateDocumentFn != nil {
		return f.updateDocumentFn(ctx, userID, doc)
	}
	return errors.New("updateDocumentFn not provided")
}

type fakeMarkers struct {
	days   map[string]progression.Date
	getErr error
}

func (f *fakeMarkers) Get(_ context.Context, owner string) (progression.Date, bool, error) {
	if f.getErr != nil {
		return progression.Date{}, false, f.getErr
	}
	d, ok := f.days[owner]
	return d, ok, nil
}

func (f *fakeMarkers) Put(_ context.Context, owner string, day progression.Date) error {
	if f.days == nil {
		f.days = map[string]progression.Date{}
	}
	f.days[owner] = day
	return nil
}

func testBank(t *testing.T) *quizbank.Bank {
	t.Helper()
	bank, err := quizbank.Default()
	require.NoError(t, err)
	return bank
}

var today = progression.Date{Year: 2025, Month: time.March, Day: 14}

func TestLoadOrInit_CreatesDefaultsWhenMissing(t *testing.T) {
	bank := testBank(t)
	var written Document
	repo := &fakeRepo{
		getDocumentFn: func(context.Context, string) (Document, error) { return Document{}, ErrNotFound },
		setDocumentFn: func(_ context.Context, userID string, doc Document) error {
			assert.Equal(t, "u1", userID)
			written = doc
			return nil
		},
	}
	markers := &fakeMarkers{}

	res, err := NewSyncAdapter(repo, markers, bank, nil).LoadOrInit(context.Background(), "u1", today)
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, 1, res.Snapshot.Level)
	assert.Equal(t, 0, res.Snapshot.XP)
	assert.Equal(t, "fig", res.Snapshot.PlantType)
	assert.Equal(t, today, res.Snapshot.LastTaskDate)

	want := Document{Level: 1, PlantType: "fig", LastTaskDate: "2025-03-14", CompletedLevels: []int{}}
	if diff := cmp.Diff(want, written); diff != "" {
		t.Fatalf("written document mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, today, markers.days[MarkerOwner("u1")])
}

func TestLoadOrInit_ReadsExistingDocument(t *testing.T) {
	bank := testBank(t)
	stored := Document{
		XP: 300, Coins: 40, Level: 2, TaskDone: true, CorrectCount: 6, WrongCount: 1,
		CurrentQ: 1, PlantType: "tomato", GrowthStage: 2, LastTaskDate: "Thu Mar 13 2025",
		CompletedLevels: []int{1},
	}
	repo := &fakeRepo{
		getDocumentFn: func(context.Context, string) (Document, error) { return stored, nil },
	}

	res, err := NewSyncAdapter(repo, nil, bank, nil).LoadOrInit(context.Background(), "u1", today)
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.False(t, res.DayFromMarker)
	want := progression.Snapshot{
		XP: 300, Coins: 40, Level: 2, QuizCursor: 1, CorrectCount: 6, WrongCount: 1,
		TaskDone: true, PlantType: "tomato", GrowthStage: 2,
		LastTaskDate:    progression.Date{Year: 2025, Month: time.March, Day: 13},
		CompletedLevels: []int{1},
	}
	if diff := cmp.Diff(want, res.Snapshot); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOrInit_FallsBackToMarkerDay(t *testing.T) {
	bank := testBank(t)
	markerDay := progression.Date{Year: 2025, Month: time.March, Day: 10}
	repo := &fakeRepo{
		getDocumentFn: func(context.Context, string) (Document, error) {
			return Document{XP: 100, Level: 1, PlantType: "fig"}, nil
		},
	}
	markers := &fakeMarkers{days: map[string]progression.Date{MarkerOwner("u1"): markerDay}}

	res, err := NewSyncAdapter(repo, markers, bank, nil).LoadOrInit(context.Background(), "u1", today)
	require.NoError(t, err)
	assert.True(t, res.DayFromMarker)
	assert.Equal(t, markerDay, res.Snapshot.LastTaskDate)
}

func TestLoadOrInit_IgnoresMarkerErrors(t *testing.T) {
	bank := testBank(t)
	repo := &fakeRepo{
		getDocumentFn: func(context.Context, string) (Document, error) {
			return Document{Level: 3, PlantType: "salad", LastTaskDate: "2025-03-13"}, nil
		},
	}
	markers := &fakeMarkers{getErr: errors.New("disk gone")}

	res, err := NewSyncAdapter(repo, markers, bank, nil).LoadOrInit(context.Background(), "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Snapshot.Level)
}

func TestLoadOrInit_ReadFailure(t *testing.T) {
	bank := testBank(t)
	repo := &fakeRepo{
		getDocumentFn: func(context.Context, string) (Document, error) { return Document{}, errors.New("unavailable") },
	}

	_, err := NewSyncAdapter(repo, nil, bank, nil).LoadOrInit(context.Background(), "u1", today)
	require.ErrorIs(t, err, ErrStoreRead)
}

func TestLoadOrInit_CreateFailure(t *testing.T) {
	bank := testBank(t)
	repo := &fakeRepo{
		getDocumentFn: func(context.Context, string) (Document, error) { return Document{}, ErrNotFound },
		setDocumentFn: func(context.Context, string, Document) error { return errors.New("quota") },
	}

	_, err := NewSyncAdapter(repo, nil, bank, nil).LoadOrInit(context.Background(), "u1", today)
	require.ErrorIs(t, err, ErrStoreWrite)
}

func TestLoadOrInit_NormalizesCorruptDocument(t *testing.T) {
	bank := testBank(t)
	repo := &fakeRepo{
		getDocumentFn: func(context.Context, string) (Document, error) {
			return Document{XP: -5, Coins: -1, Level: 0, PlantType: "cactus", GrowthStage: 7, LastTaskDate: "yesterday"}, nil
		},
	}

	res, err := NewSyncAdapter(repo, nil, bank, nil).LoadOrInit(context.Background(), "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Snapshot.XP)
	assert.Equal(t, 0, res.Snapshot.Coins)
	assert.Equal(t, 1, res.Snapshot.Level)
	assert.Equal(t, "fig", res.Snapshot.PlantType)
	assert.Equal(t, 0, res.Snapshot.GrowthStage)
	assert.True(t, res.Snapshot.LastTaskDate.IsZero())
}

func TestLoadOrInit_RequiresUserID(t *testing.T) {
	_, err := NewSyncAdapter(&fakeRepo{}, nil, testBank(t), nil).LoadOrInit(context.Background(), "", today)
	require.ErrorIs(t, err, ErrMissingUserID)
}

func TestPersist_RecreatesVanishedDocument(t *testing.T) {
	bank := testBank(t)
	var setCalls int
	repo := &fakeRepo{
		updateDocumentFn: func(context.Context, string, Document) error { return ErrNotFound },
		setDocumentFn: func(_ context.Context, _ string, doc Document) error {
			setCalls++
			assert.Equal(t, 50, doc.XP)
			return nil
		},
	}
	snap := progression.DefaultSnapshot(bank)
	snap.XP = 50

	require.NoError(t, NewSyncAdapter(repo, nil, bank, nil).Persist(context.Background(), "u1", snap))
	assert.Equal(t, 1, setCalls)
}

func TestPersist_WrapsWriteErrors(t *testing.T) {
	bank := testBank(t)
	repo := &fakeRepo{
		updateDocumentFn: func(context.Context, string, Document) error { return errors.New("deadline") },
	}

	err := NewSyncAdapter(repo, nil, bank, nil).Persist(context.Background(), "u1", progression.DefaultSnapshot(bank))
	require.ErrorIs(t, err, ErrStoreWrite)
}

func TestPersistThenLoad_RoundTripsThroughMemoryRepository(t *testing.T) {
	bank := testBank(t)
	repo := NewMemoryRepository()
	adapter := NewSyncAdapter(repo, &fakeMarkers{}, bank, nil)
	ctx := context.Background()

	_, err := adapter.LoadOrInit(ctx, "u1", today)
	require.NoError(t, err)

	snap := progression.Snapshot{
		XP: 450, Coins: 90, Level: 2, QuizCursor: 1, CorrectCount: 9, WrongCount: 2,
		TaskDone: true, PlantType: "salad", GrowthStage: 1, LastTaskDate: today,
		CompletedLevels: []int{1},
	}
	require.NoError(t, adapter.Persist(ctx, "u1", snap))

	res, err := adapter.LoadOrInit(ctx, "u1", today)
	require.NoError(t, err)
	assert.False(t, res.Created)
	if diff := cmp.Diff(snap, res.Snapshot); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReset_OverwritesWithDefaults(t *testing.T) {
	bank := testBank(t)
	repo := NewMemoryRepository()
	adapter := NewSyncAdapter(repo, nil, bank, nil)
	ctx := context.Background()

	require.NoError(t, repo.SetDocument(ctx, "u1", Document{XP: 900, Coins: 300, Level: 4, PlantType: "tomato"}))

	snap, err := adapter.Reset(ctx, "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Level)

	got, err := adapter.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.XP)
	assert.Equal(t, 0, got.Coins)
	assert.Equal(t, "fig", got.PlantType)
	assert.Equal(t, today, got.LastTaskDate)
}

func TestGet_MissingDocument(t *testing.T) {
	_, err := NewSyncAdapter(NewMemoryRepository(), nil, testBank(t), nil).Get(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}
