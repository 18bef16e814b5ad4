package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateVocabulary means no term survived frequency and stop-word filtering.
	ErrDegenerateVocabulary = errors.New("degenerate vocabulary: no terms remain after pruning")
	// ErrInsufficientCorpus means the corpus has fewer than MatchCount entries.
	ErrInsufficientCorpus = errors.New("insufficient corpus: fewer than 3 reference entries")
	// ErrEmptyQuery means the query has no weighted term: normalization left
	// no token, or every token is a stop word or outside the vocabulary.
	ErrEmptyQuery = errors.New("empty query: no usable terms after normalization")
)

// Stage names a step of the classification pipeline.
type Stage string

const (
	StageLoad      Stage = "load"
	StageNormalize Stage = "normalize"
	StageWeight    Stage = "weight"
	StageRank      Stage = "rank"
	StageSelect    Stage = "select"
)

// StageError records which pipeline stage produced Err.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// AtStage wraps err with stage information. A nil err stays nil.
func AtStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
