package iso20022

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/settlementhub/nettinghub/internal/settlement"
	"github.com/settlementhub/nettinghub/pkg/decimal"
)

// HubBIC is the fixed Business Identifier Code the settlement hub presents
// as every payer's Dbtr.Id.OrgId.BICOrBEI.
const HubBIC = "CITICIAX"

// defaultContactName is the Cdtr.CtctDtls.Nm stamped on every credit
// transfer unless the directory entry overrides it.
const defaultContactName = "Casablanca JV Org"

// Emit renders matrix into a pain.001.001.03 instruction file. currency is
// the window's common currency code (the validator already enforced that
// every position shares one); Emit resolves it to look up the decimal places
// every InstdAmt/CtrlSum must carry, so "10" settles as "10.00" for USD. Amts
// already round to that scale by the time they reach here (C1/C2), so the
// formatting here can never lose precision. skeleton is read-only: Emit
// clones its prototype PmtInf and CdtTrfTxInf rather than mutating it, so the
// same *Document can back concurrent or repeated calls.
func Emit(matrix *settlement.PaymentMatrix, directory settlement.DfspDirectory, windowID int64, currency string, skeleton *Document, rng RandomSource) (string, error) {
	if skeleton.Xmlns != PainNamespace {
		return "", &Error{Kind: KindBadTemplate, Reason: fmt.Sprintf("root xmlns %q is not %q", skeleton.Xmlns, PainNamespace)}
	}

	cur, err := decimal.LookupCurrency(currency)
	if err != nil {
		return "", fmt.Errorf("iso20022: resolving currency %q: %w", currency, err)
	}

	payers := matrix.Payers()
	for _, payerID := range payers {
		if _, ok := directory[payerID]; !ok {
			return "", &Error{Kind: KindUnknownParticipant, ParticipantID: payerID}
		}
		for _, payeeID := range matrix.Payees(payerID) {
			if _, ok := directory[payeeID]; !ok {
				return "", &Error{Kind: KindUnknownParticipant, ParticipantID: payeeID}
			}
		}
	}

	protoPmtInf, protoTx, err := skeleton.prototype()
	if err != nil {
		return "", err
	}
	protoTx.RmtInf.Ustrd = fmt.Sprintf("Settlement Window %d", windowID)

	msgId, err := newMsgId(rng)
	if err != nil {
		return "", fmt.Errorf("iso20022: generating MsgId: %w", err)
	}

	doc := Document{
		XMLName: skeleton.XMLName,
		Xmlns:   skeleton.Xmlns,
		CstmrCdtTrfInitn: CstmrCdtTrfInitn{
			GrpHdr: GrpHdr{
				MsgId:   msgId,
				CreDtTm: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
				NbOfTxs: fmt.Sprintf("%d", matrix.TransactionCount()),
				CtrlSum: matrix.ControlSum().StringFixed(cur.DP),
			},
		},
	}

	reqdExctnDt := time.Now().UTC().Format("2006-01-02")

	pmtInfGroups := make([]PmtInf, 0, len(payers))
	for ordinal, payerID := range payers {
		payerEntry := directory[payerID]
		payeeIDs := matrix.Payees(payerID)

		pmtInf := protoPmtInf
		pmtInf.PmtInfId = fmt.Sprintf("%d", ordinal)
		pmtInf.ReqdExctnDt = reqdExctnDt
		pmtInf.Dbtr.Nm = payerEntry.Name
		pmtInf.Dbtr.PstlAdr.Ctry = payerEntry.Country
		pmtInf.Dbtr.Id.OrgId.BICOrBEI = HubBIC
		pmtInf.DbtrAcct.Id.Othr.Id = stripLeadingZeros(payerEntry.AccountID)
		pmtInf.DbtrAcct.Ccy = currency

		var payerCtrlSum decimal.Decimal
		txs := make([]CdtTrfTxInf, 0, len(payeeIDs))
		for _, payeeID := range payeeIDs {
			amount, ok := matrix.AmountAt(payerID, payeeID)
			if !ok {
				continue
			}
			payerCtrlSum = payerCtrlSum.Add(amount)

			payeeEntry := directory[payeeID]
			endToEndId, err := newEndToEndId(rng)
			if err != nil {
				return "", fmt.Errorf("iso20022: generating EndToEndId: %w", err)
			}

			tx := protoTx
			tx.PmtId.EndToEndId = endToEndId
			tx.Amt.InstdAmt = InstdAmt{Ccy: currency, Value: amount.StringFixed(cur.DP)}
			tx.Cdtr.Nm = payeeEntry.Name
			tx.Cdtr.PstlAdr.Ctry = payeeEntry.Country
			contactName := payeeEntry.ContactName
			if contactName == "" {
				contactName = defaultContactName
			}
			tx.Cdtr.CtctDtls.Nm = contactName
			tx.CdtrAcct.Id.Othr.Id = stripLeadingZeros(payeeEntry.AccountID)

			txs = append(txs, tx)
		}

		pmtInf.NbOfTxs = fmt.Sprintf("%d", len(txs))
		pmtInf.CtrlSum = payerCtrlSum.StringFixed(cur.DP)
		pmtInf.CdtTrfTxInf = txs
		pmtInfGroups = append(pmtInfGroups, pmtInf)
	}
	doc.CstmrCdtTrfInitn.PmtInf = pmtInfGroups

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("iso20022: serialising document: %w", err)
	}
	return xml.Header + string(body), nil
}

func stripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
