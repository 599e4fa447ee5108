package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/papertrade/trading"
)

type ExchangeRepository struct {
	client    *Client
	idService trading.IDService
}

func NewExchangeRepository(
	client *Client,
	idService trading.IDService,
) *ExchangeRepository {
	return &ExchangeRepository{client, idService}
}

func (er *ExchangeRepository) CreateExchange(
	exchange *trading.Exchange,
) error {
	query := `INSERT INTO exchange (id, name, enabled)
		VALUES (:id, :name, :enabled)`

	_, err := er.client.instance().NamedExec(
		query,
		new(exchangeRow).wrap(exchange),
	)
	if err != nil {
		return fmt.Errorf(
			"could not execute command for exchange [%v]: [%v]",
			exchange.ID,
			err,
		)
	}

	return nil
}

func (er *ExchangeRepository) Exchange(
	exchangeID trading.ID,
) (*trading.Exchange, error) {
	var row exchangeRow

	query := `SELECT * FROM exchange WHERE id = $1`

	err := er.client.instance().Get(&row, query, exchangeID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	return row.unwrap(er.idService)
}

func (er *ExchangeRepository) EnabledExchanges() ([]*trading.Exchange, error) {
	var rows []exchangeRow

	query := `SELECT * FROM exchange WHERE enabled ORDER BY name`

	err := er.client.instance().Select(&rows, query)
	if err != nil {
		return nil, fmt.Errorf("could not execute query: [%v]", err)
	}

	exchanges := make([]*trading.Exchange, len(rows))
	for index := range rows {
		exchange, err := rows[index].unwrap(er.idService)
		if err != nil {
			return nil, err
		}

		exchanges[index] = exchange
	}

	return exchanges, nil
}

type exchangeRow struct {
	ID      string
	Name    string
	Enabled bool
}

func (er *exchangeRow) wrap(exchange *trading.Exchange) *exchangeRow {
	er.ID = exchange.ID.String()
	er.Name = exchange.Name
	er.Enabled = exchange.Enabled

	return er
}

func (er *exchangeRow) unwrap(
	idService trading.IDService,
) (*trading.Exchange, error) {
	ID, err := idService.NewIDFromString(er.ID)
	if err != nil {
		return nil, err
	}

	return &trading.Exchange{
		ID:      ID,
		Name:    er.Name,
		Enabled: er.Enabled,
	}, nil
}
