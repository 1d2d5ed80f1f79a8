package quizbank

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed levels.yaml
var defaultBankYAML []byte

// ErrInvalidBank wraps every structural or semantic problem found while loading a bank.
var ErrInvalidBank = errors.New("invalid quiz bank")

// Bank is read-only reference data: leveled questions, tasks and the plant catalogue.
type Bank struct {
	levelCount        int
	anonymousLevelCap int
	levels            map[int]LevelDefinition
	plants            []Plant
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
	defaultErr  error
)

// Default returns the embedded bank.
func Default() (*Bank, error) {
	defaultOnce.Do(func() {
		defaultBank, defaultErr = Parse(defaultBankYAML)
	})
	return defaultBank, defaultErr
}

// Open loads the bank at path, or the embedded default when path is empty.
func Open(path string) (*Bank, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Load reads and validates a bank from a YAML file.
func Load(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quiz bank: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw YAML against the bank schema and builds a Bank.
func Parse(raw []byte) (*Bank, error) {
	if err := validateSchema(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBank, err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidBank, err)
	}

	b := &Bank{
		levelCount:        f.LevelCount,
		anonymousLevelCap: f.AnonymousLevelCap,
		levels:            make(map[int]LevelDefinition, len(f.Levels)),
		plants:            f.Plants,
	}

	seenPlants := make(map[string]bool, len(f.Plants))
	for _, p := range f.Plants {
		if seenPlants[p.ID] {
			return nil, fmt.Errorf("%w: duplicate plant %q", ErrInvalidBank, p.ID)
		}
		seenPlants[p.ID] = true
	}

	for _, def := range f.Levels {
		if _, dup := b.levels[def.Level]; dup {
			return nil, fmt.Errorf("%w: duplicate level %d", ErrInvalidBank, def.Level)
		}
		if def.Level > f.LevelCount {
			return nil, fmt.Errorf("%w: level %d exceeds levelCount %d", ErrInvalidBank, def.Level, f.LevelCount)
		}
		for i, q := range def.Questions {
			if !q.HasOption(q.Correct) {
				return nil, fmt.Errorf("%w: level %d question %d: correct option %q not among options", ErrInvalidBank, def.Level, i+1, q.Correct)
			}
		}
		b.levels[def.Level] = def
	}

	return b, nil
}

// QuestionsFor returns the questions of a level, or an empty slice for undefined levels.
func (b *Bank) QuestionsFor(level int) []Question {
	def, ok := b.levels[level]
	if !ok || def.Questions == nil {
		return []Question{}
	}
	return def.Questions
}

// TasksFor returns the daily tasks of a level, or an empty slice for undefined levels.
func (b *Bank) TasksFor(level int) []string {
	def, ok := b.levels[level]
	if !ok || def.Tasks == nil {
		return []string{}
	}
	return def.Tasks
}

// Level returns the definition of a level; undefined levels yield an empty definition.
func (b *Bank) Level(level int) (LevelDefinition, bool) {
	def, ok := b.levels[level]
	if !ok {
		return LevelDefinition{Level: level, Questions: []Question{}, Tasks: []string{}}, false
	}
	return def, true
}

// Levels lists the defined levels in ascending order.
func (b *Bank) Levels() []LevelDefinition {
	out := make([]LevelDefinition, 0, len(b.levels))
	for _, def := range b.levels {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// IsFeatured reports whether a level is advertised in the menu but never selectable.
func (b *Bank) IsFeatured(level int) bool {
	return b.levels[level].Featured
}

// LevelCount is the number of levels shown in the level menu.
func (b *Bank) LevelCount() int { return b.levelCount }

// AnonymousLevelCap is the highest level a signed-out player may open freely.
func (b *Bank) AnonymousLevelCap() int { return b.anonymousLevelCap }

// Plants returns the plant catalogue in declaration order.
func (b *Bank) Plants() []Plant {
	out := make([]Plant, len(b.plants))
	copy(out, b.plants)
	return out
}

// Plant looks a plant up by id.
func (b *Bank) Plant(id string) (Plant, bool) {
	for _, p := range b.plants {
		if p.ID == id {
			return p, true
		}
	}
	return Plant{}, false
}

// DefaultPlant is the first catalogue entry.
func (b *Bank) DefaultPlant() Plant {
	return b.plants[0]
}
