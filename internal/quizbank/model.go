package quizbank

// Question is a single multiple-choice prompt.
type Question struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []string `json:"options" yaml:"options"`
	Correct string   `json:"-" yaml:"correct"`
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// LevelDefinition is the static content of one level.
type LevelDefinition struct {
	Level     int        `json:"level" yaml:"level"`
	Title     string     `json:"title,omitempty" yaml:"title"`
	Featured  bool       `json:"featured,omitempty" yaml:"featured"`
	Questions []Question `json:"questions" yaml:"questions"`
	Tasks     []string   `json:"tasks" yaml:"tasks"`
}

// Plant is an entry of the plant catalogue. Stage indexes run from 0 to Stages-1.
type Plant struct {
	ID     string `json:"id" yaml:"id"`
	Label  string `json:"label" yaml:"label"`
	Stages int    `json:"stages" yaml:"stages"`
}

// MaxStage is the highest growth stage index for the plant.
func (p Plant) MaxStage() int {
	if p.Stages <= 0 {
		return 0
	}
	return p.Stages - 1
}

type file struct {
	LevelCount        int               `yaml:"levelCount"`
	AnonymousLevelCap int               `yaml:"anonymousLevelCap"`
	Plants            []Plant           `yaml:"plants"`
	Levels            []LevelDefinition `yaml:"levels"`
}
