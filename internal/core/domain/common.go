package domain

// VersionAction names the mutation that produced a version record.
type VersionAction string

const (
	ActionCreated         VersionAction = "created"
	ActionUpdated         VersionAction = "updated"
	ActionDeleted         VersionAction = "deleted"
	ActionRestored        VersionAction = "restored"
	ActionPaymentRecorded VersionAction = "payment_recorded"
)

// IsValid reports whether a is one of the known actions.
func (a VersionAction) IsValid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted, ActionRestored, ActionPaymentRecorded:
		return true
	}
	return false
}

// Entity kinds used as collection names by the versioned stores and the database.
const (
	KindCounterparty = "counterparty"
	KindLedgerEntry  = "ledger_entry"
	KindInvoice      = "invoice"
	KindProduct      = "product"
	KindBankAccount  = "bank_account"
	KindTransaction  = "transaction"
)
