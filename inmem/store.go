// Package inmem provides in-memory implementations of the trading
// storage ports. They back the core's tests and allow running the
// system without a live database.
package inmem

import (
	"context"
	"sync"

	"github.com/papertrade/trading"
)

// Store holds all entity rows behind one mutex. Repositories created
// from the same store share its state.
type Store struct {
	mutex sync.RWMutex

	exchanges  map[string]trading.Exchange
	currencies map[string]trading.Currency
	markets    map[string]marketRecord
	traders    map[string]trading.Trader
	balances   map[string]trading.Balance
	orders     map[string]trading.Order
	deals      []trading.Deal
}

// marketRecord keeps currency references by ID so that reads always
// resolve against live currency rows.
type marketRecord struct {
	market  trading.Market
	baseID  string
	quoteID string
}

func NewStore() *Store {
	return &Store{
		exchanges:  make(map[string]trading.Exchange),
		currencies: make(map[string]trading.Currency),
		markets:    make(map[string]marketRecord),
		traders:    make(map[string]trading.Trader),
		balances:   make(map[string]trading.Balance),
		orders:     make(map[string]trading.Order),
		deals:      make([]trading.Deal, 0),
	}
}

// TxRunner serializes transactions with the store's write lock and
// rolls the mutable rows back when the transaction function fails.
type TxRunner struct {
	store *Store
}

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store}
}

func (tr *TxRunner) RunTx(
	ctx context.Context,
	fn func(tx trading.Tx) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tr.store.mutex.Lock()
	defer tr.store.mutex.Unlock()

	snapshot := tr.store.snapshot()

	if err := fn(&storeTx{tr.store}); err != nil {
		tr.store.restore(snapshot)
		return err
	}

	return nil
}

type storeSnapshot struct {
	balances map[string]trading.Balance
	orders   map[string]trading.Order
	dealsLen int
}

func (s *Store) snapshot() *storeSnapshot {
	balances := make(map[string]trading.Balance, len(s.balances))
	for key, balance := range s.balances {
		balances[key] = balance
	}

	orders := make(map[string]trading.Order, len(s.orders))
	for key, order := range s.orders {
		orders[key] = order
	}

	return &storeSnapshot{
		balances: balances,
		orders:   orders,
		dealsLen: len(s.deals),
	}
}

func (s *Store) restore(snapshot *storeSnapshot) {
	s.balances = snapshot.balances
	s.orders = snapshot.orders
	s.deals = s.deals[:snapshot.dealsLen]
}

// storeTx exposes the ledger repositories over an already locked
// store. The repositories returned here must not take the store lock
// themselves.
type storeTx struct {
	store *Store
}

func (st *storeTx) Balances() trading.BalanceRepository {
	return &BalanceRepository{store: st.store, locked: true}
}

func (st *storeTx) Orders() trading.OrderRepository {
	return &OrderRepository{store: st.store, locked: true}
}

func (st *storeTx) Deals() trading.DealRepository {
	return &DealRepository{store: st.store, locked: true}
}
