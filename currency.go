package trading

type CurrencyRepository interface {
	CreateCurrency(currency *Currency) error

	Currency(currencyID ID) (*Currency, error)

	// CurrencyByName resolves a currency by its (exchange, name) pair
	// which is unique. Returns a nil currency when no row exists.
	CurrencyByName(exchangeID ID, name string) (*Currency, error)
}

type Currency struct {
	ID         ID
	ExchangeID ID
	Name       string
}

func (c *Currency) String() string {
	return c.Name
}
