package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade/trading"
	"github.com/papertrade/trading/uuid"
)

func TestNumericConversion(t *testing.T) {
	values := []string{
		"0",
		"0.05",
		"12345.6",
		"0.00000000000000000001",
		"99999999999999999999.99999999999999999999",
	}

	for _, value := range values {
		numeric, err := decimalToNumeric(decimal.RequireFromString(value))
		if err != nil {
			t.Fatalf("could not convert [%v] to numeric: [%v]", value, err)
		}

		roundtrip, err := numericToDecimal(numeric)
		if err != nil {
			t.Fatalf("could not convert [%v] back: [%v]", value, err)
		}

		if !roundtrip.Equal(decimal.RequireFromString(value)) {
			t.Errorf(
				"unexpected numeric roundtrip\nexpected: [%v]\nactual:   [%v]",
				value,
				roundtrip,
			)
		}
	}
}

func TestOrderRowMapping(t *testing.T) {
	idService := &uuid.IDService{}

	closeDate := time.Now().Add(1 * time.Minute)

	order := &trading.Order{
		ID:         idService.NewID(),
		TraderID:   idService.NewID(),
		MarketID:   idService.NewID(),
		CreateDate: time.Now(),
		CloseDate:  &closeDate,
		Side:       trading.Ask,
		Price:      decimal.RequireFromString("0.05"),
		Volume:     decimal.RequireFromString("4"),
		Available:  decimal.RequireFromString("1.5"),
		DealtBase:  decimal.RequireFromString("2.5"),
		DealtQuote: decimal.RequireFromString("0.125"),
		State:      trading.Closed,
	}

	row, err := new(orderRow).wrap(order)
	if err != nil {
		t.Fatalf("could not wrap order: [%v]", err)
	}

	if row.Side != "ASK" || row.State != "CLOSED" {
		t.Errorf(
			"unexpected row enums: side [%v], state [%v]",
			row.Side,
			row.State,
		)
	}

	unwrapped, err := row.unwrap(idService)
	if err != nil {
		t.Fatalf("could not unwrap order: [%v]", err)
	}

	if unwrapped.ID.String() != order.ID.String() {
		t.Errorf(
			"unexpected order ID\nexpected: [%v]\nactual:   [%v]",
			order.ID,
			unwrapped.ID,
		)
	}
	if unwrapped.Side != trading.Ask || unwrapped.State != trading.Closed {
		t.Errorf(
			"unexpected order enums: side [%v], state [%v]",
			unwrapped.Side,
			unwrapped.State,
		)
	}
	if !unwrapped.Available.Equal(order.Available) {
		t.Errorf(
			"unexpected available\nexpected: [%v]\nactual:   [%v]",
			order.Available,
			unwrapped.Available,
		)
	}
	if unwrapped.CloseDate == nil || !unwrapped.CloseDate.Equal(closeDate) {
		t.Errorf(
			"unexpected close date\nexpected: [%v]\nactual:   [%v]",
			closeDate,
			unwrapped.CloseDate,
		)
	}
}

func TestMarketRowMapping(t *testing.T) {
	idService := &uuid.IDService{}

	base := &trading.Currency{ID: idService.NewID(), Name: "ETH"}

	market := &trading.Market{
		ID:         idService.NewID(),
		ExchangeID: idService.NewID(),
		Symbol:     "ETH/BTC",
		Base:       base,
		Quote:      nil,
		LastUpdate: time.Now(),
		High:       decimal.RequireFromString("0.061"),
		Low:        decimal.RequireFromString("0.057"),
		Bid:        decimal.RequireFromString("0.059"),
		Ask:        decimal.RequireFromString("0.0591"),
		Volume:     decimal.RequireFromString("12345.6"),
	}

	row, err := new(marketRow).wrap(market)
	if err != nil {
		t.Fatalf("could not wrap market: [%v]", err)
	}

	if row.Currency1ID == nil || *row.Currency1ID != base.ID.String() {
		t.Errorf("unexpected base currency ref: [%v]", row.Currency1ID)
	}
	if row.Currency2ID != nil {
		t.Errorf(
			"unexpected quote currency ref\nexpected: [%v]\nactual:   [%v]",
			nil,
			*row.Currency2ID,
		)
	}

	unwrapped, err := row.unwrap(idService)
	if err != nil {
		t.Fatalf("could not unwrap market: [%v]", err)
	}

	if unwrapped.Symbol != market.Symbol {
		t.Errorf(
			"unexpected symbol\nexpected: [%v]\nactual:   [%v]",
			market.Symbol,
			unwrapped.Symbol,
		)
	}
	if !unwrapped.High.Equal(market.High) {
		t.Errorf(
			"unexpected high\nexpected: [%v]\nactual:   [%v]",
			market.High,
			unwrapped.High,
		)
	}
}
