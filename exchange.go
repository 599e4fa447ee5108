package trading

type ExchangeRepository interface {
	CreateExchange(exchange *Exchange) error

	Exchange(exchangeID ID) (*Exchange, error)

	EnabledExchanges() ([]*Exchange, error)
}

// Exchange represents one external trading venue. Its currencies and
// markets are owned rows discovered lazily from market data.
type Exchange struct {
	ID      ID
	Name    string
	Enabled bool
}

func (e *Exchange) String() string {
	return e.Name
}
