package httpModel

import (
	"github.com/shopspring/decimal"
)

type SectorRatioRequest struct {
	TickerShares []TickerShare `json:"tickerShares" validate:"required,min=1,dive"`
}

type TickerShare struct {
	Ticker string `json:"ticker" validate:"required"`
	Share  int    `json:"share" validate:"required,min=1"`
}

type StockResponse struct {
	Ticker      string           `json:"ticker"`
	CompanyName string           `json:"companyName"`
	SectorName  string           `json:"sectorName"`
	Exchange    string           `json:"exchange"`
	Industry    string           `json:"industry"`
	Price       decimal.Decimal  `json:"price"`
	Volume      *int64           `json:"volume"`
	LogoUrl     string           `json:"logoUrl,omitempty"`
}

type DividendResponse struct {
	Amount          *decimal.Decimal `json:"dividend"`
	DeclarationDate *string          `json:"declarationDate"`
	ExDividendDate  *string          `json:"exDividendDate"`
	PaymentDate     *string          `json:"paymentDate"`
}

type StockDetailResponse struct {
	StockResponse
	DividendMonths []string          `json:"dividendMonths"`
	DividendYield  *decimal.Decimal  `json:"dividendYield"`
	NextDividend   *DividendResponse `json:"earliestPaymentDividend"`
}

type SectorRatioResponse struct {
	SectorName  string               `json:"sectorName"`
	SectorRatio float64              `json:"sectorRatio"`
	Stocks      []StockShareResponse `json:"stocks"`
}

type StockShareResponse struct {
	StockResponse
	Share int `json:"share"`
}

type UpcomingDividendResponse struct {
	StockResponse
	Dividend DividendResponse `json:"dividend"`
}

type StockDividendYieldResponse struct {
	StockResponse
	DividendYield decimal.Decimal `json:"dividendYield"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
