package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/papertrade/trading"
)

type TraderRepository struct {
	client    *Client
	idService trading.IDService
}

func NewTraderRepository(
	client *Client,
	idService trading.IDService,
) *TraderRepository {
	return &TraderRepository{client, idService}
}

func (tr *TraderRepository) CreateTrader(trader *trading.Trader) error {
	query := `INSERT INTO trader (id, name, active)
		VALUES (:id, :name, :active)`

	_, err := tr.client.instance().NamedExec(
		query,
		new(traderRow).wrap(trader),
	)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for trader [%v]: [%v]",
			trader.ID,
			err,
		)
	}

	return nil
}

func (tr *TraderRepository) Trader(
	traderID trading.ID,
) (*trading.Trader, error) {
	var row traderRow

	query := `SELECT * FROM trader WHERE id = $1`

	err := tr.client.instance().Get(&row, query, traderID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return row.unwrap(tr.idService)
}

func (tr *TraderRepository) ActiveTraders() ([]*trading.Trader, error) {
	var rows []traderRow

	query := `SELECT * FROM trader WHERE active ORDER BY name`

	err := tr.client.instance().Select(&rows, query)
	if err != nil {
		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	traders := make([]*trading.Trader, len(rows))
	for index := range rows {
		trader, err := rows[index].unwrap(tr.idService)
		if err != nil {
			return nil, err
		}

		traders[index] = trader
	}

	return traders, nil
}

type traderRow struct {
	ID     string
	Name   string
	Active bool
}

func (tr *traderRow) wrap(trader *trading.Trader) *traderRow {
	tr.ID = trader.ID.String()
	tr.Name = trader.Name
	tr.Active = trader.Active

	return tr
}

func (tr *traderRow) unwrap(
	idService trading.IDService,
) (*trading.Trader, error) {
	ID, err := idService.NewIDFromString(tr.ID)
	if err != nil {
		return nil, err
	}

	return &trading.Trader{
		ID:     ID,
		Name:   tr.Name,
		Active: tr.Active,
	}, nil
}
