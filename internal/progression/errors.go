package progression

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is the parent of every rejected intent. A rejected
// intent never changes state.
var ErrInvalidTransition = errors.New("invalid transition")

var (
	ErrNoActiveQuestion   = fmt.Errorf("%w: no active question", ErrInvalidTransition)
	ErrAnswerPending      = fmt.Errorf("%w: question already answered", ErrInvalidTransition)
	ErrUnknownOption      = fmt.Errorf("%w: option is not offered by the question", ErrInvalidTransition)
	ErrNextLocked         = fmt.Errorf("%w: answer the question correctly first", ErrInvalidTransition)
	ErrQuestionOutOfRange = fmt.Errorf("%w: no question in that direction", ErrInvalidTransition)
	ErrLevelLocked        = fmt.Errorf("%w: level locked", ErrInvalidTransition)
	ErrTaskAlreadyDone    = fmt.Errorf("%w: daily task already done", ErrInvalidTransition)
	ErrUnknownPlant       = fmt.Errorf("%w: unknown plant", ErrInvalidTransition)
)
