// Package suggest owns the suggestion ledger: one record per suggestion
// message, with at most one vote per user per record.
package suggest

import (
	"fmt"

	"streamwarden/internal/store"

	"go.uber.org/zap"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

type Status int

const (
	StatusCounted Status = iota
	StatusAlreadyVoted
	StatusUnknownRecord
	StatusInvalidDirection
)

// VoteResult carries the outcome of a vote plus the counts the caller needs
// to re-render the suggestion message.
type VoteResult struct {
	Status    Status
	Upvotes   int
	Downvotes int
}

// Ledger is the persistence contract the engine needs. Update must re-read
// the stored ledger before applying the mutation.
type Ledger interface {
	Get() (store.SuggestionLedger, error)
	Update(func(*store.SuggestionLedger) error) error
}

type Engine struct {
	ledger Ledger
	logger *zap.Logger
}

func NewEngine(ledger Ledger, logger *zap.Logger) *Engine {
	return &Engine{ledger: ledger, logger: logger}
}

// Create persists a zero-vote record keyed by the ID of the rendered
// suggestion message.
func (e *Engine) Create(messageID, title, description string, author store.SuggestionAuthor) (store.SuggestionRecord, error) {
	record := store.SuggestionRecord{
		Title:       title,
		Description: description,
		Author:      author,
		Voters:      []string{},
	}
	err := e.ledger.Update(func(ledger *store.SuggestionLedger) error {
		ledger.Suggestions[messageID] = record
		return nil
	})
	if err != nil {
		return store.SuggestionRecord{}, fmt.Errorf("persist suggestion: %w", err)
	}
	return record, nil
}

// Record returns the current state of a suggestion, if it exists.
func (e *Engine) Record(messageID string) (store.SuggestionRecord, bool) {
	ledger, err := e.ledger.Get()
	if err != nil {
		e.logger.Warn("suggestion ledger read failed", zap.Error(err))
		return store.SuggestionRecord{}, false
	}
	record, ok := ledger.Suggestions[messageID]
	return record, ok
}

// CastVote records one vote. A user already present in the record's voter
// set is rejected without touching the ledger; the counts returned always
// satisfy upvotes+downvotes == len(voters).
func (e *Engine) CastVote(recordID, userID string, direction Direction) (VoteResult, error) {
	if direction != DirectionUp && direction != DirectionDown {
		return VoteResult{Status: StatusInvalidDirection}, nil
	}

	result := VoteResult{Status: StatusCounted}
	err := e.ledger.Update(func(ledger *store.SuggestionLedger) error {
		record, ok := ledger.Suggestions[recordID]
		if !ok {
			result.Status = StatusUnknownRecord
			return nil
		}
		for _, voter := range record.Voters {
			if voter == userID {
				result.Status = StatusAlreadyVoted
				result.Upvotes = record.Upvotes
				result.Downvotes = record.Downvotes
				return nil
			}
		}
		record.Voters = append(record.Voters, userID)
		if direction == DirectionUp {
			record.Upvotes++
		} else {
			record.Downvotes++
		}
		ledger.Suggestions[recordID] = record
		result.Upvotes = record.Upvotes
		result.Downvotes = record.Downvotes
		return nil
	})
	if err != nil {
		return VoteResult{}, fmt.Errorf("persist vote: %w", err)
	}
	return result, nil
}

// SwapExplanation stores the ID of the freshly posted explanation message
// and returns the superseded one, empty if there was none. Deleting the old
// message is the caller's job.
func (e *Engine) SwapExplanation(newMessageID string) (string, error) {
	var oldID string
	err := e.ledger.Update(func(ledger *store.SuggestionLedger) error {
		oldID = ledger.ExplanationMessageID
		ledger.ExplanationMessageID = newMessageID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("persist explanation pointer: %w", err)
	}
	return oldID, nil
}
