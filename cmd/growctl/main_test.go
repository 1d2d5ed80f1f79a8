package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnimationBenoit/mygrowverse/internal/daymarker"
	"github.com/AnimationBenoit/mygrowverse/internal/progress"
	"github.com/AnimationBenoit/mygrowverse/internal/progression"
)

func memoryOpener(repo progress.Repository) repoOpener {
	return func(context.Context, *cobra.Command) (progress.Repository, func() error, error) {
		return repo, func() error { return nil }, nil
	}
}

func run(t *testing.T, repo progress.Repository, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(memoryOpener(repo))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBankValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
levelCount: 3
anonymousLevelCap: 2
plants:
  - id: fig
    label: Figuier
    stages: 3
levels:
  - level: 1
    questions:
      - prompt: Pick one
        options: ["a", "b"]
        correct: "a"
    tasks: ["Water"]
`), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("levelCount: three\n"), 0o600))

	out, err := run(t, progress.NewMemoryRepository(), "bank", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 1 levels defined, 1 plants")

	_, err = run(t, progress.NewMemoryRepository(), "bank", "validate", bad)
	require.Error(t, err)
}

func TestBankLevelsDefault(t *testing.T) {
	out, err := run(t, progress.NewMemoryRepository(), "bank", "levels")
	require.NoError(t, err)
	assert.Contains(t, out, "LEVEL")
	assert.Contains(t, out, "LEVEL 10 : LEARN TO EARN (featured)")
}

func TestProgressShow(t *testing.T) {
	repo := progress.NewMemoryRepository()
	require.NoError(t, repo.SetDocument(context.Background(), "u1", progress.Document{
		XP: 300, Coins: 40, Level: 2, PlantType: "tomato", LastTaskDate: "2025-03-14", CompletedLevels: []int{1},
	}))

	out, err := run(t, repo, "progress", "show", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "xp: 300")
	assert.Contains(t, out, "plantType: tomato")

	out, err = run(t, repo, "progress", "show", "u1", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"coins": 40`)

	_, err = run(t, repo, "progress", "show", "missing")
	require.ErrorIs(t, err, progress.ErrNotFound)
}

func TestProgressReset(t *testing.T) {
	t.Setenv("DAYMARKER_PATH", filepath.Join(t.TempDir(), "absent.db"))
	repo := progress.NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.SetDocument(ctx, "u1", progress.Document{XP: 900, Coins: 120, Level: 5, PlantType: "salad"}))

	_, err := run(t, repo, "progress", "reset", "u1")
	require.Error(t, err)

	out, err := run(t, repo, "progress", "reset", "u1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "reset u1 to level 1")

	doc, err := repo.GetDocument(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.XP)
	assert.Equal(t, 0, doc.Coins)
	assert.Equal(t, 1, doc.Level)
	assert.Equal(t, "fig", doc.PlantType)
}

func TestProgressResetUsesGameSettings(t *testing.T) {
	dir := t.TempDir()
	bankPath := filepath.Join(dir, "bank.yaml")
	require.NoError(t, os.WriteFile(bankPath, []byte(`
levelCount: 3
anonymousLevelCap: 2
plants:
  - id: olive
    label: Olivier
    stages: 4
levels:
  - level: 1
    questions:
      - prompt: Pick one
        options: ["a", "b"]
        correct: "a"
    tasks: ["Water"]
`), 0o600))
	markerPath := filepath.Join(dir, "markers.db")
	stale := progression.Date{Year: 2020, Month: time.January, Day: 1}
	markers, err := daymarker.Open(markerPath)
	require.NoError(t, err)
	require.NoError(t, markers.Put(context.Background(), progress.MarkerOwner("u1"), stale))
	require.NoError(t, markers.Close())

	t.Setenv("QUIZ_BANK_PATH", bankPath)
	t.Setenv("DAYMARKER_PATH", markerPath)
	t.Setenv("GAME_TIMEZONE", "Europe/Paris")

	repo := progress.NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.SetDocument(ctx, "u1", progress.Document{XP: 900, Level: 3, PlantType: "fig"}))

	_, err = run(t, repo, "progress", "reset", "u1", "--yes")
	require.NoError(t, err)

	doc, err := repo.GetDocument(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "olive", doc.PlantType)
	assert.NotEqual(t, stale.String(), doc.LastTaskDate)

	markers, err = daymarker.Open(markerPath)
	require.NoError(t, err)
	defer markers.Close()
	got, ok, err := markers.Get(ctx, progress.MarkerOwner("u1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc.LastTaskDate, got.String())
}

func TestProgressResetRejectsBadTimezone(t *testing.T) {
	t.Setenv("DAYMARKER_PATH", filepath.Join(t.TempDir(), "absent.db"))
	t.Setenv("GAME_TIMEZONE", "Mars/Olympus")
	repo := progress.NewMemoryRepository()
	require.NoError(t, repo.SetDocument(context.Background(), "u1", progress.Document{XP: 900, Level: 3}))

	_, err := run(t, repo, "progress", "reset", "u1", "--yes")
	require.Error(t, err)

	doc, err := repo.GetDocument(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 900, doc.XP)
}
