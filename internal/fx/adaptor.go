// Package fx adapts FX rate ticks from the partner rate provider into the
// fixed inner-object shape the receiving bank's rate-channel API expects.
// It is not part of the settlement flow, but it owns its own set of
// decimal-shape contracts and so lives in the hard core alongside C1-C5.
package fx

import (
	"strconv"
	"strings"
)

// RateRecord is the generic rate tick C6 maps from — the shape
// internal/fxclient's GET /rates/{pair} response is decoded into.
type RateRecord struct {
	RateSetID     string
	CurrencyPair  string
	Rate          string
	DecimalPlaces int
	EndTime       string
}

// RateBlock is the inner object citi_rate_block emits, matching the
// partner bank's rate-channel field names exactly.
type RateBlock struct {
	RateSetID        string `json:"rateSetId"`
	CurrencyPair     string `json:"currencyPair"`
	BaseCurrency     string `json:"baseCurrency"`
	RatePrecision    string `json:"ratePrecision"`
	InvRatePrecision string `json:"invRatePrecision"`
	Tenor            string `json:"tenor"`
	ValueDate        string `json:"valueDate"`
	BidSpotRate      string `json:"bidSpotRate"`
	OfferSpotRate    string `json:"offerSpotRate"`
	MidPrice         string `json:"midPrice"`
	ValidUntilTime   string `json:"validUntilTime"`
	IsValid          string `json:"isValid"`
	IsTradable       string `json:"isTradable"`
}

// BuildDecimalRate inserts a decimal point decimalPlaces positions from the
// right of rateDigits. A decimalPlaces of 0 returns the input unchanged; a
// decimalPlaces at or beyond the digit count prepends "0." rather than
// padding with extra zeros.
func BuildDecimalRate(rateDigits string, decimalPlaces int) (string, error) {
	if rateDigits == "" || !isDigitString(rateDigits) {
		return "", &Error{Kind: KindInvalidInput, Field: "rate_digits", Reason: "must be a non-empty digit string"}
	}
	if decimalPlaces < 0 {
		return "", &Error{Kind: KindInvalidInput, Field: "decimal_places", Reason: "must be non-negative"}
	}

	if decimalPlaces == 0 {
		return rateDigits, nil
	}
	length := len(rateDigits)
	if decimalPlaces >= length {
		return "0." + rateDigits, nil
	}
	split := length - decimalPlaces
	return rateDigits[:split] + "." + rateDigits[split:], nil
}

func isDigitString(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExtractSourceCurrency returns the first three letters of a six-letter
// currency pair.
func ExtractSourceCurrency(pair string) (string, error) {
	if err := validateCurrencyPair(pair); err != nil {
		return "", err
	}
	return pair[:3], nil
}

// ExtractDestinationCurrency returns the last three letters of a six-letter
// currency pair.
func ExtractDestinationCurrency(pair string) (string, error) {
	if err := validateCurrencyPair(pair); err != nil {
		return "", err
	}
	return pair[3:], nil
}

func validateCurrencyPair(pair string) error {
	if len(pair) != 6 {
		return &Error{Kind: KindInvalidInput, Field: "currency_pair", Reason: "must be six letters"}
	}
	for _, r := range pair {
		if r < 'A' || r > 'Z' {
			if r < 'a' || r > 'z' {
				return &Error{Kind: KindInvalidInput, Field: "currency_pair", Reason: "must be six letters"}
			}
		}
	}
	return nil
}

// CustomFxpChannelIdentifier is lower-cased source currency concatenated
// with lower-cased destination currency, regardless of how either arrived.
func CustomFxpChannelIdentifier(sourceCurrency, destinationCurrency string) string {
	return strings.ToLower(sourceCurrency) + strings.ToLower(destinationCurrency)
}

// CitiRateBlock maps a RateRecord into the partner bank's rate-channel inner
// object. rateSetId is taken from record.RateSetID when present; otherwise
// the static table is consulted by currency pair, per the resolution of this
// package's one open question. Neither yielding a value is InvalidInput.
func CitiRateBlock(record RateRecord) (RateBlock, error) {
	if err := validateCurrencyPair(record.CurrencyPair); err != nil {
		return RateBlock{}, err
	}
	pair := strings.ToUpper(record.CurrencyPair)

	rateSetID := record.RateSetID
	if rateSetID == "" {
		looked, ok := lookupRateSetID(pair)
		if !ok {
			return RateBlock{}, &Error{Kind: KindInvalidInput, Field: "rate_set_id", Reason: "absent from input and not found in the static table"}
		}
		rateSetID = looked
	}

	baseCurrency, err := ExtractSourceCurrency(pair)
	if err != nil {
		return RateBlock{}, err
	}

	bidSpotRate, err := BuildDecimalRate(record.Rate, record.DecimalPlaces)
	if err != nil {
		return RateBlock{}, err
	}

	return RateBlock{
		RateSetID:        rateSetID,
		CurrencyPair:     pair,
		BaseCurrency:     baseCurrency,
		RatePrecision:    strconv.Itoa(record.DecimalPlaces),
		InvRatePrecision: "1",
		Tenor:            "TN",
		ValueDate:        "0000-00-00",
		BidSpotRate:      bidSpotRate,
		OfferSpotRate:    "0.0000",
		MidPrice:         "0.0000",
		ValidUntilTime:   validUntilTime(record.EndTime),
		IsValid:          "true",
		IsTradable:       "true",
	}, nil
}

func validUntilTime(endTime string) string {
	replaced := strings.Replace(endTime, "T", " ", 1)
	return strings.TrimSuffix(replaced, "Z")
}
