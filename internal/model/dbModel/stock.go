package dbModel

import (
	"github.com/shopspring/decimal"
)

type Stock struct {
	ID        int64           `db:"stock_id"`
	Ticker    string          `db:"ticker"`
	Name      string          `db:"name"`
	Sector    string          `db:"sector"`
	Exchange  string          `db:"exchange"`
	Industry  string          `db:"industry"`
	Price     decimal.Decimal `db:"price"`
	Volume    *int64          `db:"volume"`
	AvgVolume *int64          `db:"avg_volume"`
	LogoUrl   string          `db:"logo_url"`
}

type StockYield struct {
	Stock
	Yield decimal.Decimal `db:"dividend_yield"`
}
