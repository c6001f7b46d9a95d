// Package settlement implements the minimum-payments netting engine: it
// validates a closed settlement window's net positions and reduces them,
// greedily, to a set of at most n-1 pairwise credit transfers that
// discharges every position.
package settlement

import (
	"github.com/settlementhub/nettinghub/pkg/decimal"
)

// ParticipantPosition is one participant's net settlement position within a
// window: positive amounts are owed to the hub, negative amounts are owed by
// the hub.
type ParticipantPosition struct {
	ParticipantID int64
	AccountID     int64
	Amount        decimal.Decimal
	Currency      decimal.Currency
}

// AccountRef is a single account entry inside a participant record, mirroring
// the wire shape's "accounts" array. A ParticipantPosition is only valid once
// it has been reduced to exactly one AccountRef by the validator.
type AccountRef struct {
	ID                  int64               `json:"id"`
	NetSettlementAmount NetSettlementAmount `json:"netSettlementAmount"`
}

// NetSettlementAmount is the wire representation of a signed decimal amount
// plus its currency, as carried inside AccountRef.
type NetSettlementAmount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Participant is one entry in the raw SettlementWindow input, before
// validation collapses its Accounts slice down to a single position.
type Participant struct {
	ID       int64        `json:"id"`
	Accounts []AccountRef `json:"accounts"`
}

// SettlementWindow is the raw input aggregate: a window id, its lifecycle
// state, and the list of participants who held a position when it closed.
type SettlementWindow struct {
	ID           int64         `json:"id"`
	State        string        `json:"state"`
	Participants []Participant `json:"participants"`
}

// DfspDirectoryEntry is one participant's banking details, as consumed only
// by the ISO 20022 emitter — the netting engine itself never looks at names,
// countries, or account numbers.
type DfspDirectoryEntry struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	AccountID string `json:"accountId"`

	// ContactName overrides the emitter's default creditor contact name
	// ("Casablanca JV Org") when set.
	ContactName string `json:"contactName,omitempty"`
}

// DfspDirectory maps participant id to its banking details.
type DfspDirectory map[int64]DfspDirectoryEntry
