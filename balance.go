package trading

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type BalanceRepository interface {
	CreateBalance(balance *Balance) error

	// Balance resolves the unique (trader, currency) row. Returns a
	// nil balance when no row exists.
	Balance(traderID, currencyID ID) (*Balance, error)

	UpdateBalance(balance *Balance) error
}

// Balance is a trader's holding of one currency. Value is the total
// owned amount; Available is the part not reserved by open orders.
// Outside of an in-flight mutation 0 <= Available <= Value holds.
type Balance struct {
	ID         ID
	TraderID   ID
	CurrencyID ID
	Value      decimal.Decimal
	Available  decimal.Decimal
}

func (b *Balance) String() string {
	return fmt.Sprintf(
		"balance [%v] value [%v] available [%v]",
		b.ID,
		b.Value,
		b.Available,
	)
}

// Ledger performs the balance mutations backing order reservations and
// fill settlement. All mutators persist through the bound repository;
// run them inside a transaction when more than one row is touched.
type Ledger struct {
	repository BalanceRepository
	idService  IDService
}

func NewLedger(repository BalanceRepository, idService IDService) *Ledger {
	return &Ledger{repository, idService}
}

// GetOrCreateBalance returns the trader's balance of the given currency,
// creating a zero-valued row on first use.
func (l *Ledger) GetOrCreateBalance(
	traderID, currencyID ID,
) (*Balance, error) {
	balance, err := l.repository.Balance(traderID, currencyID)
	if err != nil {
		return nil, fmt.Errorf("could not get balance: [%v]", err)
	}

	if balance != nil {
		return balance, nil
	}

	balance = &Balance{
		ID:         l.idService.NewID(),
		TraderID:   traderID,
		CurrencyID: currencyID,
		Value:      decimal.Zero,
		Available:  decimal.Zero,
	}

	if err := l.repository.CreateBalance(balance); err != nil {
		return nil, fmt.Errorf("could not create balance: [%v]", err)
	}

	return balance, nil
}

// Reserve moves amount out of the balance's available part to back an
// order. Value stays untouched.
func (l *Ledger) Reserve(balance *Balance, amount decimal.Decimal) error {
	if amount.GreaterThan(balance.Available) {
		return fmt.Errorf(
			"%w: balance [%v] has [%v] available, needs [%v]",
			ErrInsufficientFunds,
			balance.ID,
			balance.Available,
			amount,
		)
	}

	balance.Available = balance.Available.Sub(amount)

	return l.updateBalance(balance)
}

// Release returns a no longer needed reservation to the available part.
// The caller guarantees the released amount was previously reserved.
func (l *Ledger) Release(balance *Balance, amount decimal.Decimal) error {
	released := balance.Available.Add(amount)
	if released.GreaterThan(balance.Value) {
		return &InvariantViolationError{
			BalanceID: balance.ID,
			Detail: fmt.Sprintf(
				"release of [%v] would exceed value [%v]",
				amount,
				balance.Value,
			),
		}
	}

	balance.Available = released

	return l.updateBalance(balance)
}

// SettleIncoming credits funds received from a fill to both the total
// value and the available part.
func (l *Ledger) SettleIncoming(
	balance *Balance,
	amount decimal.Decimal,
) error {
	balance.Value = balance.Value.Add(amount)
	balance.Available = balance.Available.Add(amount)

	return l.updateBalance(balance)
}

// SettleOutgoing finalizes a fill on the paying side by decrementing the
// total value. The available part was already decremented at reservation
// time.
func (l *Ledger) SettleOutgoing(
	balance *Balance,
	amount decimal.Decimal,
) error {
	settled := balance.Value.Sub(amount)
	if settled.IsNegative() || settled.LessThan(balance.Available) {
		return &InvariantViolationError{
			BalanceID: balance.ID,
			Detail: fmt.Sprintf(
				"outgoing settlement of [%v] would drive value [%v] below "+
					"available [%v]",
				amount,
				balance.Value,
				balance.Available,
			),
		}
	}

	balance.Value = settled

	return l.updateBalance(balance)
}

func (l *Ledger) updateBalance(balance *Balance) error {
	if err := l.repository.UpdateBalance(balance); err != nil {
		return fmt.Errorf(
			"could not update balance [%v]: [%v]",
			balance.ID,
			err,
		)
	}

	return nil
}
