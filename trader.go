package trading

type TraderRepository interface {
	CreateTrader(trader *Trader) error

	Trader(traderID ID) (*Trader, error)

	ActiveTraders() ([]*Trader, error)
}

// Trader is one trading strategy whose simulated balances and orders
// are tracked by the ledger.
type Trader struct {
	ID     ID
	Name   string
	Active bool
}

func (t *Trader) String() string {
	return t.Name
}
