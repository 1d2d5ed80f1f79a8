package quizbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBank(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 13, b.LevelCount())
	assert.Equal(t, 5, b.AnonymousLevelCap())

	q := b.QuestionsFor(1)
	require.Len(t, q, 2)
	assert.Equal(t, "18-22°C", q[0].Correct)
	assert.Equal(t, []string{"Water your plant", "Check temperature"}, b.TasksFor(1))
	assert.Equal(t, []string{"Adjust lighting", "Check irrigation"}, b.TasksFor(2))

	assert.True(t, b.IsFeatured(10))
	assert.False(t, b.IsFeatured(1))

	plants := b.Plants()
	require.Len(t, plants, 3)
	assert.Equal(t, "fig", b.DefaultPlant().ID)
	tomato, ok := b.Plant("tomato")
	require.True(t, ok)
	assert.Equal(t, 2, tomato.MaxStage())
}

func TestUndefinedLevelsAreEmpty(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	assert.NotNil(t, b.QuestionsFor(7))
	assert.Empty(t, b.QuestionsFor(7))
	assert.NotNil(t, b.TasksFor(42))
	assert.Empty(t, b.TasksFor(42))

	def, ok := b.Level(7)
	assert.False(t, ok)
	assert.Equal(t, 7, def.Level)
	assert.Empty(t, def.Questions)
}

func TestLevelsSorted(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	levels := b.Levels()
	require.Len(t, levels, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{levels[0].Level, levels[1].Level, levels[2].Level})
}

func TestParseRejectsInvalidBanks(t *testing.T) {
	tests := map[string]string{
		"empty document": ``,
		"missing plants": `
levelCount: 2
levels: []
`,
		"unknown field": `
levelCount: 2
plants: [{id: fig, label: Fig, stages: 3}]
levels: []
bonus: true
`,
		"single option": `
levelCount: 2
plants: [{id: fig, label: Fig, stages: 3}]
levels:
  - level: 1
    questions:
      - prompt: Why?
        options: ["because"]
        correct: because
`,
		"correct not in options": `
levelCount: 2
plants: [{id: fig, label: Fig, stages: 3}]
levels:
  - level: 1
    questions:
      - prompt: Why?
        options: ["a", "b"]
        correct: c
`,
		"duplicate level": `
levelCount: 2
plants: [{id: fig, label: Fig, stages: 3}]
levels:
  - level: 1
  - level: 1
`,
		"level beyond menu": `
levelCount: 2
plants: [{id: fig, label: Fig, stages: 3}]
levels:
  - level: 3
`,
		"duplicate plant": `
levelCount: 2
plants: [{id: fig, label: Fig, stages: 3}, {id: fig, label: Fig again, stages: 2}]
levels: []
`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.ErrorIs(t, err, ErrInvalidBank)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
levelCount: 3
anonymousLevelCap: 1
plants:
  - {id: basil, label: Basilic, stages: 4}
levels:
  - level: 1
    questions:
      - prompt: Basil likes?
        options: ["sun", "shade"]
        correct: sun
    tasks: [Pinch flowers]
`), 0o600))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, b.LevelCount())
	assert.Equal(t, "basil", b.DefaultPlant().ID)
	assert.Equal(t, 3, b.DefaultPlant().MaxStage())
	assert.Len(t, b.QuestionsFor(1), 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOpenFallsBackToDefault(t *testing.T) {
	b, err := Open("")
	require.NoError(t, err)
	def, err := Default()
	require.NoError(t, err)
	assert.Same(t, def, b)

	_, err = Open(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
