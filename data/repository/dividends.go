package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/payout-hq/payout/internal/converter/dbConverter"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/dbModel"
	"github.com/payout-hq/payout/utils"
	"github.com/shopspring/decimal"
)

const dividendColumns = `dividend_id, stock_id, amount, declaration_date, ex_dividend_date, payment_date`

func (r *Postgres) GetDividendsByStockID(ctx context.Context, stockID int64) (dividends []model.Dividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE stock_id = $1 ORDER BY payment_date NULLS LAST`

	slog.Debug("GetDividendsByStockID start", slog.String("rqID", rqID), slog.Int64("stockID", stockID))
	defer func() {
		if err != nil {
			slog.Error("GetDividendsByStockID failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetDividendsByStockID completed", slog.String("rqID", rqID))
		}
	}()

	dbDividends := make([]dbModel.Dividend, 0)
	err = r.db.SelectContext(ctx, &dbDividends, query, stockID)
	if err != nil {
		return nil, err
	}

	return dbConverter.ConvertDividends(dbDividends), nil
}

// GetCurrentDividendByStockID returns the stock's latest dividend record by
// declaration date. This is the record the reconciliation cycle updates in
// place; ErrNotFound means the cycle has to create one.
func (r *Postgres) GetCurrentDividendByStockID(ctx context.Context, stockID int64) (dividend model.Dividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT ` + dividendColumns + `
		FROM dividends
		WHERE stock_id = $1
		ORDER BY declaration_date DESC NULLS LAST, dividend_id DESC
		LIMIT 1
		`

	slog.Debug("GetCurrentDividendByStockID start", slog.String("rqID", rqID), slog.Int64("stockID", stockID))
	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			slog.Error("GetCurrentDividendByStockID failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetCurrentDividendByStockID completed", slog.String("rqID", rqID))
		}
	}()

	dbDividend := dbModel.Dividend{}
	err = r.db.GetContext(ctx, &dbDividend, query, stockID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Dividend{}, ErrNotFound
		}
		return model.Dividend{}, err
	}

	return dbConverter.ConvertDividend(dbDividend), nil
}

func (r *Postgres) GetLatestDividendsByStockIDs(ctx context.Context, stockIDs []int64) (dividends map[int64]model.Dividend, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("GetLatestDividendsByStockIDs start", slog.String("rqID", rqID), slog.Int("stockIDs", len(stockIDs)))
	defer func() {
		if err != nil {
			slog.Error("GetLatestDividendsByStockIDs failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetLatestDividendsByStockIDs completed", slog.String("rqID", rqID))
		}
	}()

	if len(stockIDs) == 0 {
		return map[int64]model.Dividend{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT DISTINCT ON (stock_id) `+dividendColumns+`
		FROM dividends
		WHERE stock_id IN (?)
		ORDER BY stock_id, declaration_date DESC NULLS LAST, dividend_id DESC`,
		stockIDs,
	)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	dbDividends := make([]dbModel.Dividend, 0, len(stockIDs))
	err = r.db.SelectContext(ctx, &dbDividends, query, args...)
	if err != nil {
		return nil, err
	}

	dividends = make(map[int64]model.Dividend, len(dbDividends))
	for _, d := range dbDividends {
		dividends[d.StockID] = dbConverter.ConvertDividend(d)
	}

	return dividends, nil
}

func (r *Postgres) InsertDividend(ctx context.Context, dividend model.Dividend) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO dividends (stock_id, amount, declaration_date, ex_dividend_date, payment_date)
		VALUES ($1, $2, $3, $4, $5)
		`

	slog.Debug("InsertDividend start", slog.String("rqID", rqID), slog.Int64("stockID", dividend.StockID))
	defer func() {
		if err != nil {
			slog.Error("InsertDividend failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertDividend completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.db.ExecContext(
		ctx,
		query,
		dividend.StockID,
		nullDecimal(dividend.Amount),
		dividend.DeclarationDate,
		dividend.ExDividendDate,
		dividend.PaymentDate,
	)
	return err
}

func (r *Postgres) UpdateDividend(ctx context.Context, dividend model.Dividend) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		UPDATE dividends
		SET amount = $1, declaration_date = $2, ex_dividend_date = $3, payment_date = $4
		WHERE dividend_id = $5
		`

	slog.Debug("UpdateDividend start", slog.String("rqID", rqID), slog.Int64("dividendID", dividend.ID))
	defer func() {
		if err != nil {
			slog.Error("UpdateDividend failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateDividend completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.db.ExecContext(
		ctx,
		query,
		nullDecimal(dividend.Amount),
		dividend.DeclarationDate,
		dividend.ExDividendDate,
		dividend.PaymentDate,
		dividend.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
