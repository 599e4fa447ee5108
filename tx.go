package trading

import "context"

// Tx exposes the repositories of one atomic unit of work. Rows read
// through a Tx are locked for the duration of the transaction, so the
// ledger and lifecycle operations never interleave partially on the
// same trader's balances.
type Tx interface {
	Balances() BalanceRepository

	Orders() OrderRepository

	Deals() DealRepository
}

// TxRunner executes a function inside one storage transaction with
// serializable row-level isolation. The transaction commits when the
// function returns nil and rolls back otherwise. Retrying a rolled
// back operation is safe: every precondition is re-evaluated against
// current state.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx Tx) error) error
}
