package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published over NATS by cmd/settlementd and cmd/fxingest once a
// window-settle request or a rate tick reaches a terminal state.
const (
	EventTypeSettlementCompleted = "settlement.netting.completed"
	EventTypeSettlementFailed    = "settlement.netting.failed"
	EventTypeRateBlockPublished  = "fx.rateblock.published"
)

// Event is the base event envelope every settlement-domain event is
// published inside.
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Version     int             `json:"version"`
	Data        json.RawMessage `json:"data"`
	Metadata    EventMetadata   `json:"metadata"`
}

// EventMetadata contains event metadata.
type EventMetadata struct {
	CorrelationID string `json:"correlation_id"`
	CausationID   string `json:"causation_id"`
	Source        string `json:"source"`
}

// SettlementCompletedData is the payload of EventTypeSettlementCompleted.
type SettlementCompletedData struct {
	WindowID         int64  `json:"window_id"`
	Currency         string `json:"currency"`
	TransactionCount int    `json:"transaction_count"`
	ControlSum       string `json:"control_sum"`
}

// SettlementFailedData is the payload of EventTypeSettlementFailed.
type SettlementFailedData struct {
	WindowID int64  `json:"window_id"`
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
}

// RateBlockPublishedData is the payload of EventTypeRateBlockPublished,
// carrying the mapped partner-bank rate-channel object.
type RateBlockPublishedData struct {
	RateSetID    string `json:"rateSetId"`
	CurrencyPair string `json:"currencyPair"`
	BidSpotRate  string `json:"bidSpotRate"`
}

// NewEvent creates a new event, marshaling data and stamping a fresh id.
func NewEvent(eventType string, aggregateID uuid.UUID, data interface{}, metadata EventMetadata) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		Timestamp:   time.Now(),
		Version:     1,
		Data:        dataBytes,
		Metadata:    metadata,
	}, nil
}

// ParseEventData parses event data into the specified type.
func ParseEventData[T any](event *Event) (*T, error) {
	var data T
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
