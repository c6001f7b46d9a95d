package gateway

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/settlementhub/nettinghub/internal/iso20022"
	"github.com/settlementhub/nettinghub/internal/settlement"
)

func TestMapErrorValidatorKindIsBadRequest(t *testing.T) {
	status, body := mapError(&settlement.Error{Kind: settlement.KindEmptySettlement})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, string(settlement.KindEmptySettlement), body["error"])
}

func TestMapErrorFailedToBalanceIsUnprocessable(t *testing.T) {
	status, _ := mapError(&settlement.Error{Kind: settlement.KindFailedToBalance})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestMapErrorEmitterKindIsFailedDependency(t *testing.T) {
	status, body := mapError(&iso20022.Error{Kind: iso20022.KindUnknownParticipant, ParticipantID: 7})
	assert.Equal(t, http.StatusFailedDependency, status)
	assert.Equal(t, string(iso20022.KindUnknownParticipant), body["error"])
}
