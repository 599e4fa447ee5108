package trading

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// pairSeparator splits a market symbol into its base and quote
// currency names, e.g. "ETH/BTC".
const pairSeparator = "/"

// ParseSymbol splits a market symbol into base and quote currency names.
// Returns ErrMalformedSymbol when the separator is missing.
func ParseSymbol(symbol string) (base, quote string, err error) {
	splitter := strings.Index(symbol, pairSeparator)
	if splitter < 0 {
		return "", "", ErrMalformedSymbol
	}

	return symbol[:splitter], symbol[splitter+len(pairSeparator):], nil
}

type MarketRepository interface {
	CreateMarket(market *Market) error

	Market(marketID ID) (*Market, error)

	// MarketBySymbol resolves a market by its (exchange, symbol) pair
	// which is unique. Returns a nil market when no row exists.
	MarketBySymbol(exchangeID ID, symbol string) (*Market, error)

	MarketsOfExchange(exchangeID ID) ([]*Market, error)

	UpdateMarket(market *Market) error
}

// Market is one traded currency pair of an exchange, together with the
// last observed ticker snapshot. The currency references are nil when
// the underlying currency row has been deleted; such a market survives
// as stale and cannot back new orders.
type Market struct {
	ID         ID
	ExchangeID ID
	Symbol     string
	Base       *Currency
	Quote      *Currency

	LastUpdate time.Time
	High       decimal.Decimal
	Low        decimal.Decimal
	Bid        decimal.Decimal
	Ask        decimal.Decimal
	Volume     decimal.Decimal
}

func (m *Market) String() string {
	return m.Symbol
}

// Ticker is a point-in-time market data snapshot delivered by a provider.
type Ticker struct {
	Time   time.Time
	High   decimal.Decimal
	Low    decimal.Decimal
	Bid    decimal.Decimal
	Ask    decimal.Decimal
	Volume decimal.Decimal
}

// MarketDataProvider is a handle to one exchange's market data API.
type MarketDataProvider interface {
	// Symbols lists all pair symbols traded on the exchange, in the
	// "BASE/QUOTE" format.
	Symbols(ctx context.Context) ([]string, error)

	// Ticker fetches the current snapshot for the given symbol.
	// Returns ErrUnavailable when the provider cannot deliver one.
	Ticker(ctx context.Context, symbol string) (*Ticker, error)
}

// MarketDataConnector constructs provider handles for an exchange,
// validating credentials and connectivity along the way.
type MarketDataConnector interface {
	Connect(ctx context.Context, exchange *Exchange) (MarketDataProvider, error)
}
