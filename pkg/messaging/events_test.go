package messaging

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventMarshalsDataAndStampsID(t *testing.T) {
	aggregateID := uuid.New()
	event, err := NewEvent(EventTypeSettlementCompleted, aggregateID, SettlementCompletedData{
		WindowID:         42,
		Currency:         "MAD",
		TransactionCount: 3,
		ControlSum:       "1500.00",
	}, EventMetadata{Source: "settlementd"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EventTypeSettlementCompleted, event.Type)
	assert.Equal(t, aggregateID, event.AggregateID)
	assert.Equal(t, 1, event.Version)
}

func TestParseEventDataRoundTrips(t *testing.T) {
	aggregateID := uuid.New()
	original := SettlementFailedData{
		WindowID: 7,
		Kind:     "FailedToBalance",
		Reason:   "control sum mismatch",
	}

	event, err := NewEvent(EventTypeSettlementFailed, aggregateID, original, EventMetadata{})
	require.NoError(t, err)

	parsed, err := ParseEventData[SettlementFailedData](event)
	require.NoError(t, err)
	assert.Equal(t, original, *parsed)
}

func TestParseEventDataRateBlock(t *testing.T) {
	aggregateID := uuid.New()
	original := RateBlockPublishedData{
		RateSetID:    "RS-2026-08-06-001",
		CurrencyPair: "USD/MAD",
		BidSpotRate:  "10.0123",
	}

	event, err := NewEvent(EventTypeRateBlockPublished, aggregateID, original, EventMetadata{Source: "fxingest"})
	require.NoError(t, err)

	parsed, err := ParseEventData[RateBlockPublishedData](event)
	require.NoError(t, err)
	assert.Equal(t, original, *parsed)
}
