package events

import (
	"encoding/json"
	"time"
)

const (
	KindTransactionAdded  = "transaction_added"
	KindSuggestionApplied = "suggestion_applied"
)

// RefreshMessage is the wire form of a domain event. It carries only the
// event kind and entity reference; the worker re-reads the store for the
// full state.
type RefreshMessage struct {
	Kind          string    `json:"kind"`
	TransactionID string    `json:"transaction_id,omitempty"`
	SuggestionID  int       `json:"suggestion_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionAddedMessage(transactionID string) *RefreshMessage {
	return &RefreshMessage{
		Kind:          KindTransactionAdded,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func NewSuggestionAppliedMessage(suggestionID int) *RefreshMessage {
	return &RefreshMessage{
		Kind:         KindSuggestionApplied,
		SuggestionID: suggestionID,
		Timestamp:    time.Now(),
	}
}

func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
