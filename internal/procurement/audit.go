package procurement

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Audit actions written by the lifecycle orchestrator.
const (
	ActionSubmitted        = "Submitted"
	ActionPOCreated        = "PO Created"
	ActionPOIssued         = "PO Issued"
	ActionGoodsReceived    = "Goods Received"
	ActionGoodsReceipt     = "Goods Receipt"
	ActionInvoiceValidated = "Invoice Validated"
	ActionPaymentScheduled = "Payment Scheduled"
)

var amountPrinter = message.NewPrinter(language.Indonesian)

// appendHistory never rewrites existing entries.
func appendHistory(history []AuditEntry, action, actorID, notes string, at time.Time) []AuditEntry {
	return append(history, AuditEntry{Action: action, ActorID: actorID, Notes: notes, Timestamp: at})
}

// FormatAmount renders a rounded IDR amount, e.g. "IDR 200.000".
func FormatAmount(amount decimal.Decimal) string {
	return amountPrinter.Sprintf("IDR %d", amount.Round(0).IntPart())
}
