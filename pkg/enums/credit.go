package enums

// CreditTxnKind labels a credit_transactions row.
type CreditTxnKind string

const (
	CreditTxnOrderDebit      CreditTxnKind = "order_debit"
	CreditTxnReconciledDebit CreditTxnKind = "reconciled_debit"
	CreditTxnTopUp           CreditTxnKind = "top_up"
)
