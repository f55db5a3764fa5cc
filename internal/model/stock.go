package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stock struct {
	ID        int64
	Ticker    string
	Name      string
	Sector    Sector
	Exchange  Exchange
	Industry  string
	Price     decimal.Decimal
	Volume    *int64
	AvgVolume *int64
	LogoUrl   string
}

// StockShare pairs a stock with a caller-supplied share count and the
// dividend record (if any) used for amount calculations.
type StockShare struct {
	Stock    Stock
	Share    int
	Dividend *Dividend
}

type SectorInfo struct {
	Ratio       float64
	StockShares []StockShare
}

// SectorRatio is one entry of the sector distribution answer.
type SectorRatio struct {
	Sector Sector
	SectorInfo
}

type StockDetail struct {
	Stock          Stock
	DividendMonths []time.Month
	DividendYield  *decimal.Decimal
	// NextDividend holds the projected next dividend with its payment date
	// re-stamped into the current year. Nil when there is no prior-year
	// dividend history to project from.
	NextDividend *Dividend
}

type StockDividend struct {
	Stock    Stock
	Dividend Dividend
}

type StockYield struct {
	Stock Stock
	Yield decimal.Decimal
}

type TickerShare struct {
	Ticker string
	Share  int
}
