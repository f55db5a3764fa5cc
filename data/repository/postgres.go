package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/internal/converter/dbConverter"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/dbModel"
	"github.com/payout-hq/payout/utils"
)

type Postgres struct {
	db  *sqlx.DB
	cfg *config.Config
}

func NewPostgres(cfg *config.Config, db *sqlx.DB) *Postgres {
	return &Postgres{db: db, cfg: cfg}
}

const stockColumns = `stock_id, ticker, name, sector, exchange, industry, price, volume, avg_volume, logo_url`

func (r *Postgres) UpsertStocks(ctx context.Context, stocks []model.Stock) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("UpsertStocks start", slog.String("rqID", rqID), slog.Int("stocks", len(stocks)))
	defer func() {
		if err != nil {
			slog.Error("UpsertStocks failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertStocks completed", slog.String("rqID", rqID))
		}
	}()

	if len(stocks) == 0 {
		return nil
	}

	sb := strings.Builder{}
	args := make([]any, 0, len(stocks)*8)

	sb.WriteString(`INSERT INTO stocks (ticker, name, sector, exchange, industry, price, volume, avg_volume) VALUES `)

	for i, stock := range stocks {
		args = append(args,
			stock.Ticker,
			stock.Name,
			stock.Sector.Name(),
			string(stock.Exchange),
			stock.Industry,
			stock.Price,
			stock.Volume,
			stock.AvgVolume,
		)

		start := i*8 + 1
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			start, start+1, start+2, start+3, start+4, start+5, start+6, start+7,
		))

		if i < len(stocks)-1 {
			sb.WriteString(",")
		}
	}

	sb.WriteString(`
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			exchange = EXCLUDED.exchange,
			industry = EXCLUDED.industry,
			price = EXCLUDED.price,
			volume = EXCLUDED.volume,
			avg_volume = EXCLUDED.avg_volume;
	`)

	_, err = r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *Postgres) GetStockByTicker(ctx context.Context, ticker string) (stock model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE ticker = $1`

	slog.Debug("GetStockByTicker start", slog.String("rqID", rqID), slog.String("ticker", ticker))
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			slog.Error("GetStockByTicker failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetStockByTicker completed", slog.String("rqID", rqID))
		}
	}()

	dbStock := dbModel.Stock{}
	err = r.db.GetContext(ctx, &dbStock, query, ticker)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Stock{}, ErrNotFound
		}
		return model.Stock{}, err
	}

	return dbConverter.ConvertStock(dbStock), nil
}

func (r *Postgres) GetStocksByTickers(ctx context.Context, tickers []string) (stocks []model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("GetStocksByTickers start", slog.String("rqID", rqID), slog.Int("tickers", len(tickers)))
	defer func() {
		if err != nil {
			slog.Error("GetStocksByTickers failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetStocksByTickers completed", slog.String("rqID", rqID))
		}
	}()

	query, args, err := sqlx.In(`SELECT `+stockColumns+` FROM stocks WHERE ticker IN (?)`, tickers)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	dbStocks := make([]dbModel.Stock, 0, len(tickers))
	err = r.db.SelectContext(ctx, &dbStocks, query, args...)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertStocks(dbStocks), nil
}

// SearchStocks matches the keyword against ticker and company name, ticker
// prefix matches first.
func (r *Postgres) SearchStocks(ctx context.Context, keyword string, limit, offset int) (stocks []model.Stock, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ` + stockColumns + `
		FROM stocks
		WHERE ticker ILIKE $1 || '%' OR name ILIKE '%' || $1 || '%'
		ORDER BY
			CASE WHEN ticker ILIKE $1 || '%' THEN 0 ELSE 1 END,
			ticker
		LIMIT $2 OFFSET $3
		`

	slog.Debug("SearchStocks start", slog.String("rqID", rqID), slog.String("keyword", keyword))
	defer func() {
		if err != nil {
			slog.Error("SearchStocks failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("SearchStocks completed", slog.String("rqID", rqID))
		}
	}()

	dbStocks := make([]dbModel.Stock, 0, limit)
	err = r.db.SelectContext(ctx, &dbStocks, query, keyword, limit, offset)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertStocks(dbStocks), nil
}

// GetUpcomingDividendStocks lists stocks whose current dividend record has
// an ex-dividend date at or after the given moment, soonest first.
func (r *Postgres) GetUpcomingDividendStocks(ctx context.Context, from time.Time, limit, offset int) (res []model.StockDividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT
			s.stock_id, s.ticker, s.name, s.sector, s.exchange, s.industry, s.price, s.volume, s.avg_volume, s.logo_url,
			d.dividend_id AS div_id,
			d.amount AS div_amount,
			d.declaration_date AS div_declaration_date,
			d.ex_dividend_date AS div_ex_dividend_date,
			d.payment_date AS div_payment_date
		FROM stocks s
		JOIN dividends d ON d.stock_id = s.stock_id
		WHERE d.ex_dividend_date >= $1
		ORDER BY d.ex_dividend_date, s.ticker
		LIMIT $2 OFFSET $3
		`

	slog.Debug("GetUpcomingDividendStocks start", slog.String("rqID", rqID), slog.Time("from", from))
	defer func() {
		if err != nil {
			slog.Error("GetUpcomingDividendStocks failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUpcomingDividendStocks completed", slog.String("rqID", rqID))
		}
	}()

	rows := make([]dbModel.StockDividend, 0, limit)
	err = r.db.SelectContext(ctx, &rows, query, from, limit, offset)
	if err != nil {
		return nil, err
	}

	res = make([]model.StockDividend, 0, len(rows))
	for _, row := range rows {
		res = append(res, dbConverter.ConvertStockDividend(row))
	}

	return res, nil
}

// GetTopDividendYieldStocks ranks stocks by trailing-year dividend sum
// divided by current price. Stocks without priced dividends in that year
// are excluded.
func (r *Postgres) GetTopDividendYieldStocks(ctx context.Context, year int, limit, offset int) (res []model.StockYield, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT
			s.stock_id, s.ticker, s.name, s.sector, s.exchange, s.industry, s.price, s.volume, s.avg_volume, s.logo_url,
			SUM(d.amount) / s.price AS dividend_yield
		FROM stocks s
		JOIN dividends d ON d.stock_id = s.stock_id
		WHERE d.amount IS NOT NULL
			AND d.payment_date IS NOT NULL
			AND EXTRACT(YEAR FROM d.payment_date) = $1
			AND s.price > 0
		GROUP BY s.stock_id
		ORDER BY dividend_yield DESC, s.ticker
		LIMIT $2 OFFSET $3
		`

	slog.Debug("GetTopDividendYieldStocks start", slog.String("rqID", rqID), slog.Int("year", year))
	defer func() {
		if err != nil {
			slog.Error("GetTopDividendYieldStocks failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTopDividendYieldStocks completed", slog.String("rqID", rqID))
		}
	}()

	rows := make([]dbModel.StockYield, 0, limit)
	err = r.db.SelectContext(ctx, &rows, query, year, limit, offset)
	if err != nil {
		return nil, err
	}

	res = make([]model.StockYield, 0, len(rows))
	for _, row := range rows {
		res = append(res, dbConverter.ConvertStockYield(row))
	}

	return res, nil
}
