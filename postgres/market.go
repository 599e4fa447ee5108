package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgtype"

	"github.com/papertrade/trading"
)

type MarketRepository struct {
	client    *Client
	idService trading.IDService
}

func NewMarketRepository(
	client *Client,
	idService trading.IDService,
) *MarketRepository {
	return &MarketRepository{client, idService}
}

func (mr *MarketRepository) CreateMarket(market *trading.Market) error {
	query := `INSERT INTO market (id, exchange_id, symbol, currency1_id,
			currency2_id, last_update, high, low, bid, ask, volume)
		VALUES (:id, :exchange_id, :symbol, :currency1_id, :currency2_id,
			:last_update, :high, :low, :bid, :ask, :volume)`

	row, err := new(marketRow).wrap(market)
	if err != nil {
		return fmt.Errorf(
			"could not convert market [%v] to pg row: [%v]",
			market.ID,
			err,
		)
	}

	_, err = mr.client.instance().NamedExec(query, row)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for market [%v]: [%v]",
			market.ID,
			err,
		)
	}

	return nil
}

func (mr *MarketRepository) Market(
	marketID trading.ID,
) (*trading.Market, error) {
	var row marketRow

	query := `SELECT * FROM market WHERE id = $1`

	err := mr.client.instance().Get(&row, query, marketID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return mr.unwrapWithCurrencies(&row)
}

func (mr *MarketRepository) MarketBySymbol(
	exchangeID trading.ID,
	symbol string,
) (*trading.Market, error) {
	var row marketRow

	query := `SELECT * FROM market WHERE exchange_id = $1 AND symbol = $2`

	err := mr.client.instance().Get(
		&row,
		query,
		exchangeID.String(),
		symbol,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return mr.unwrapWithCurrencies(&row)
}

func (mr *MarketRepository) MarketsOfExchange(
	exchangeID trading.ID,
) ([]*trading.Market, error) {
	var rows []marketRow

	query := `SELECT * FROM market WHERE exchange_id = $1 ORDER BY symbol`

	err := mr.client.instance().Select(&rows, query, exchangeID.String())
	if err != nil {
		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	markets := make([]*trading.Market, len(rows))
	for index := range rows {
		market, err := mr.unwrapWithCurrencies(&rows[index])
		if err != nil {
			return nil, err
		}

		markets[index] = market
	}

	return markets, nil
}

func (mr *MarketRepository) UpdateMarket(market *trading.Market) error {
	query := `UPDATE market SET last_update = :last_update, high = :high,
			low = :low, bid = :bid, ask = :ask, volume = :volume
		WHERE id = :id`

	row, err := new(marketRow).wrap(market)
	if err != nil {
		return fmt.Errorf(
			"could not convert market [%v] to pg row: [%v]",
			market.ID,
			err,
		)
	}

	_, err = mr.client.instance().NamedExec(query, row)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for market [%v]: [%v]",
			market.ID,
			err,
		)
	}

	return nil
}

// unwrapWithCurrencies resolves the market's currency pair against live
// currency rows. A reference whose currency row has been deleted comes
// back nil; the market survives as stale.
func (mr *MarketRepository) unwrapWithCurrencies(
	row *marketRow,
) (*trading.Market, error) {
	market, err := row.unwrap(mr.idService)
	if err != nil {
		return nil, err
	}

	market.Base, err = mr.referencedCurrency(row.Currency1ID)
	if err != nil {
		return nil, err
	}

	market.Quote, err = mr.referencedCurrency(row.Currency2ID)
	if err != nil {
		return nil, err
	}

	return market, nil
}

func (mr *MarketRepository) referencedCurrency(
	currencyID *string,
) (*trading.Currency, error) {
	if currencyID == nil {
		return nil, nil
	}

	var row currencyRow

	query := `SELECT * FROM currency WHERE id = $1`

	err := mr.client.instance().Get(&row, query, *currencyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return row.unwrap(mr.idService)
}

type marketRow struct {
	ID          string
	ExchangeID  string    `db:"exchange_id"`
	Symbol      string
	Currency1ID *string   `db:"currency1_id"`
	Currency2ID *string   `db:"currency2_id"`
	LastUpdate  time.Time `db:"last_update"`
	High        pgtype.Numeric
	Low         pgtype.Numeric
	Bid         pgtype.Numeric
	Ask         pgtype.Numeric
	Volume      pgtype.Numeric
}

func (mr *marketRow) wrap(market *trading.Market) (*marketRow, error) {
	high, err := decimalToNumeric(market.High)
	if err != nil {
		return nil, err
	}

	low, err := decimalToNumeric(market.Low)
	if err != nil {
		return nil, err
	}

	bid, err := decimalToNumeric(market.Bid)
	if err != nil {
		return nil, err
	}

	ask, err := decimalToNumeric(market.Ask)
	if err != nil {
		return nil, err
	}

	volume, err := decimalToNumeric(market.Volume)
	if err != nil {
		return nil, err
	}

	mr.ID = market.ID.String()
	mr.ExchangeID = market.ExchangeID.String()
	mr.Symbol = market.Symbol
	if market.Base != nil {
		baseID := market.Base.ID.String()
		mr.Currency1ID = &baseID
	}
	if market.Quote != nil {
		quoteID := market.Quote.ID.String()
		mr.Currency2ID = &quoteID
	}
	mr.LastUpdate = market.LastUpdate
	mr.High = high
	mr.Low = low
	mr.Bid = bid
	mr.Ask = ask
	mr.Volume = volume

	return mr, nil
}

func (mr *marketRow) unwrap(
	idService trading.IDService,
) (*trading.Market, error) {
	ID, err := idService.NewIDFromString(mr.ID)
	if err != nil {
		return nil, err
	}

	exchangeID, err := idService.NewIDFromString(mr.ExchangeID)
	if err != nil {
		return nil, err
	}

	high, err := numericToDecimal(mr.High)
	if err != nil {
		return nil, err
	}

	low, err := numericToDecimal(mr.Low)
	if err != nil {
		return nil, err
	}

	bid, err := numericToDecimal(mr.Bid)
	if err != nil {
		return nil, err
	}

	ask, err := numericToDecimal(mr.Ask)
	if err != nil {
		return nil, err
	}

	volume, err := numericToDecimal(mr.Volume)
	if err != nil {
		return nil, err
	}

	return &trading.Market{
		ID:         ID,
		ExchangeID: exchangeID,
		Symbol:     mr.Symbol,
		LastUpdate: mr.LastUpdate,
		High:       high,
		Low:        low,
		Bid:        bid,
		Ask:        ask,
		Volume:     volume,
	}, nil
}
