package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/papertrade/trading"
)

type CurrencyRepository struct {
	client    *Client
	idService trading.IDService
}

func NewCurrencyRepository(
	client *Client,
	idService trading.IDService,
) *CurrencyRepository {
	return &CurrencyRepository{client, idService}
}

func (cr *CurrencyRepository) CreateCurrency(
	currency *trading.Currency,
) error {
	query := `INSERT INTO currency (id, exchange_id, name)
		VALUES (:id, :exchange_id, :name)`

	_, err := cr.client.instance().NamedExec(
		query,
		new(currencyRow).wrap(currency),
	)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for currency [%v]: [%v]",
			currency.ID,
			err,
		)
	}

	return nil
}

func (cr *CurrencyRepository) Currency(
	currencyID trading.ID,
) (*trading.Currency, error) {
	var row currencyRow

	query := `SELECT * FROM currency WHERE id = $1`

	err := cr.client.instance().Get(&row, query, currencyID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return row.unwrap(cr.idService)
}

func (cr *CurrencyRepository) CurrencyByName(
	exchangeID trading.ID,
	name string,
) (*trading.Currency, error) {
	var row currencyRow

	query := `SELECT * FROM currency WHERE exchange_id = $1 AND name = $2`

	err := cr.client.instance().Get(&row, query, exchangeID.String(), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return row.unwrap(cr.idService)
}

type currencyRow struct {
	ID         string
	ExchangeID string `db:"exchange_id"`
	Name       string
}

func (cr *currencyRow) wrap(currency *trading.Currency) *currencyRow {
	cr.ID = currency.ID.String()
	cr.ExchangeID = currency.ExchangeID.String()
	cr.Name = currency.Name

	return cr
}

func (cr *currencyRow) unwrap(
	idService trading.IDService,
) (*trading.Currency, error) {
	ID, err := idService.NewIDFromString(cr.ID)
	if err != nil {
		return nil, err
	}

	exchangeID, err := idService.NewIDFromString(cr.ExchangeID)
	if err != nil {
		return nil, err
	}

	return &trading.Currency{
		ID:         ID,
		ExchangeID: exchangeID,
		Name:       cr.Name,
	}, nil
}
