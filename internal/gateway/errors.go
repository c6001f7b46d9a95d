package gateway

import (
	"net/http"

	"github.com/settlementhub/nettinghub/internal/iso20022"
	"github.com/settlementhub/nettinghub/internal/settlement"
)

// mapError turns a core error into the HTTP status and JSON body the
// settle-window endpoint returns. This mapping is glue: it carries no
// invariants of its own, only an operator-friendly status code per kind.
func mapError(err error) (int, map[string]interface{}) {
	kind, reason := errorKindAndReason(err)
	status := http.StatusInternalServerError

	switch err.(type) {
	case *settlement.Error:
		if kind == string(settlement.KindFailedToBalance) {
			status = http.StatusUnprocessableEntity
		} else {
			status = http.StatusBadRequest
		}
	case *iso20022.Error:
		status = http.StatusFailedDependency
	}

	return status, map[string]interface{}{"error": kind, "reason": reason}
}

// errorKindAndReason extracts a machine-checkable kind string and a
// human-readable reason from any core error, falling back to the generic
// error message for anything unrecognised.
func errorKindAndReason(err error) (string, string) {
	switch e := err.(type) {
	case *settlement.Error:
		return string(e.Kind), e.Error()
	case *iso20022.Error:
		return string(e.Kind), e.Error()
	default:
		return "Unknown", err.Error()
	}
}
