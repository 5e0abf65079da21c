package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation classifies client mistakes (HTTP 400).
	ErrValidation = errors.New("validation error")
	// ErrNotFound classifies lookups of unknown entities (HTTP 404).
	ErrNotFound = errors.New("not found")
)

var (
	// ErrMissingPlayerName is returned when a request carries no player name.
	ErrMissingPlayerName = fmt.Errorf("%w: missing playerName", ErrValidation)
	// ErrDuplicatePlayer is returned when the name already joined this session.
	ErrDuplicatePlayer = fmt.Errorf("%w: player already joined", ErrValidation)
	// ErrAlreadyAnswered is returned on a second answer to the same question.
	ErrAlreadyAnswered = fmt.Errorf("%w: player already answered this question", ErrValidation)
	// ErrGameFinished is returned when the session has no current question left.
	ErrGameFinished = fmt.Errorf("%w: game already finished", ErrValidation)
	// ErrPlayerNotFound is returned when a player acts before joining.
	ErrPlayerNotFound = fmt.Errorf("%w: player not found", ErrNotFound)
	// ErrQuestionBankNotFound indicates the question bank could not be located.
	ErrQuestionBankNotFound = fmt.Errorf("%w: question bank", ErrNotFound)
	// ErrEmptyQuestionBank indicates a loaded bank has no questions.
	ErrEmptyQuestionBank = errors.New("question bank is empty")
)
