package fmpModel

// Wire shapes returned by the FMP (Financial Modeling Prep) API. All
// fields are optional on the wire; dates come as "yyyy-mm-dd" strings.

type StockRecord struct {
	Symbol            string   `json:"symbol"`
	CompanyName       string   `json:"companyName"`
	Sector            string   `json:"sector"`
	Industry          string   `json:"industry"`
	ExchangeShortName string   `json:"exchangeShortName"`
	Price             *float64 `json:"price"`
}

type VolumeRecord struct {
	Symbol    string `json:"symbol"`
	Volume    *int64 `json:"volume"`
	AvgVolume *int64 `json:"avgVolume"`
}

type DividendRecord struct {
	Symbol          string   `json:"symbol"`
	Dividend        *float64 `json:"dividend"`
	AdjDividend     *float64 `json:"adjDividend"`
	Date            string   `json:"date"`
	DeclarationDate string   `json:"declarationDate"`
	PaymentDate     string   `json:"paymentDate"`
	RecordDate      string   `json:"recordDate"`
	Label           string   `json:"label"`
}
