package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgtype"

	"github.com/papertrade/trading"
)

// BalanceRepository reads and writes balance rows. Instances bound to
// a transaction lock the rows they read for the remainder of the
// transaction.
type BalanceRepository struct {
	client    *Client
	tx        database
	idService trading.IDService
}

func NewBalanceRepository(
	client *Client,
	idService trading.IDService,
) *BalanceRepository {
	return &BalanceRepository{client: client, idService: idService}
}

func (br *BalanceRepository) db() database {
	if br.tx != nil {
		return br.tx
	}

	return br.client.instance()
}

func (br *BalanceRepository) CreateBalance(balance *trading.Balance) error {
	query := `INSERT INTO balance (id, trader_id, currency_id, value, available)
		VALUES (:id, :trader_id, :currency_id, :value, :available)`

	row, err := new(balanceRow).wrap(balance)
	if err != nil {
		return fmt.Errorf(
			"could not convert balance [%v] to pg row: [%v]",
			balance.ID,
			err,
		)
	}

	_, err = br.db().NamedExec(query, row)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for balance [%v]: [%v]",
			balance.ID,
			err,
		)
	}

	return nil
}

func (br *BalanceRepository) Balance(
	traderID, currencyID trading.ID,
) (*trading.Balance, error) {
	var row balanceRow

	query := `SELECT * FROM balance WHERE trader_id = $1 AND currency_id = $2`
	if br.tx != nil {
		query += ` FOR UPDATE`
	}

	err := br.db().Get(
		&row,
		query,
		traderID.String(),
		currencyID.String(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return row.unwrap(br.idService)
}

func (br *BalanceRepository) UpdateBalance(balance *trading.Balance) error {
	query := `UPDATE balance SET value = :value, available = :available
		WHERE id = :id`

	row, err := new(balanceRow).wrap(balance)
	if err != nil {
		return fmt.Errorf(
			"could not convert balance [%v] to pg row: [%v]",
			balance.ID,
			err,
		)
	}

	_, err = br.db().NamedExec(query, row)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for balance [%v]: [%v]",
			balance.ID,
			err,
		)
	}

	return nil
}

type balanceRow struct {
	ID         string
	TraderID   string `db:"trader_id"`
	CurrencyID string `db:"currency_id"`
	Value      pgtype.Numeric
	Available  pgtype.Numeric
}

func (br *balanceRow) wrap(balance *trading.Balance) (*balanceRow, error) {
	value, err := decimalToNumeric(balance.Value)
	if err != nil {
		return nil, err
	}

	available, err := decimalToNumeric(balance.Available)
	if err != nil {
		return nil, err
	}

	br.ID = balance.ID.String()
	br.TraderID = balance.TraderID.String()
	br.CurrencyID = balance.CurrencyID.String()
	br.Value = value
	br.Available = available

	return br, nil
}

func (br *balanceRow) unwrap(
	idService trading.IDService,
) (*trading.Balance, error) {
	ID, err := idService.NewIDFromString(br.ID)
	if err != nil {
		return nil, err
	}

	traderID, err := idService.NewIDFromString(br.TraderID)
	if err != nil {
		return nil, err
	}

	currencyID, err := idService.NewIDFromString(br.CurrencyID)
	if err != nil {
		return nil, err
	}

	value, err := numericToDecimal(br.Value)
	if err != nil {
		return nil, err
	}

	available, err := numericToDecimal(br.Available)
	if err != nil {
		return nil, err
	}

	return &trading.Balance{
		ID:         ID,
		TraderID:   traderID,
		CurrencyID: currencyID,
		Value:      value,
		Available:  available,
	}, nil
}
