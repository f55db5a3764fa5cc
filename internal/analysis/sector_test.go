package analysis

import (
	"testing"

	"github.com/payout-hq/payout/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockWithSector(ticker string, sector model.Sector) model.Stock {
	return model.Stock{
		Ticker:   ticker,
		Name:     ticker + " Inc",
		Sector:   sector,
		Exchange: model.ExchangeNYSE,
		Price:    decimal.NewFromFloat(10),
	}
}

func TestCalculateSectorRatios(t *testing.T) {
	tests := []struct {
		name   string
		shares []model.StockShare
		want   map[model.Sector]float64
	}{
		{
			name:   "empty input returns empty map",
			shares: nil,
			want:   map[model.Sector]float64{},
		},
		{
			name: "single holding takes the whole portfolio",
			shares: []model.StockShare{
				{Stock: stockWithSector("AAPL", model.SectorTechnology), Share: 2},
			},
			want: map[model.Sector]float64{model.SectorTechnology: 1.0},
		},
		{
			name: "ratio counts stocks, not shares",
			shares: []model.StockShare{
				{Stock: stockWithSector("AAPL", model.SectorTechnology), Share: 100},
				{Stock: stockWithSector("MSFT", model.SectorTechnology), Share: 1},
				{Stock: stockWithSector("TSLA", model.SectorConsumerCyclical), Share: 1},
				{Stock: stockWithSector("XOM", model.SectorEnergy), Share: 50},
			},
			want: map[model.Sector]float64{
				model.SectorTechnology:       0.5,
				model.SectorConsumerCyclical: 0.25,
				model.SectorEnergy:           0.25,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSectorRatios(tt.shares)

			require.Len(t, got, len(tt.want))
			for sector, ratio := range tt.want {
				info, ok := got[sector]
				require.True(t, ok, "missing sector %s", sector)
				assert.InDelta(t, ratio, info.Ratio, 1e-9)
				assert.NotEmpty(t, info.StockShares)
			}
		})
	}
}

func TestCalculateSectorRatios_sumIsOne(t *testing.T) {
	shares := []model.StockShare{
		{Stock: stockWithSector("AAPL", model.SectorTechnology), Share: 1},
		{Stock: stockWithSector("JPM", model.SectorFinancialServices), Share: 3},
		{Stock: stockWithSector("O", model.SectorRealEstate), Share: 7},
		{Stock: stockWithSector("KO", model.SectorConsumerDefensive), Share: 2},
		{Stock: stockWithSector("PEP", model.SectorConsumerDefensive), Share: 4},
		{Stock: stockWithSector("JNJ", model.SectorHealthcare), Share: 9},
		{Stock: stockWithSector("PFE", model.SectorHealthcare), Share: 1},
	}

	sum := 0.0
	for _, info := range CalculateSectorRatios(shares) {
		sum += info.Ratio
	}

	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCalculateSectorRatios_keepsContributingShares(t *testing.T) {
	aapl := model.StockShare{Stock: stockWithSector("AAPL", model.SectorTechnology), Share: 2}
	msft := model.StockShare{Stock: stockWithSector("MSFT", model.SectorTechnology), Share: 5}
	xom := model.StockShare{Stock: stockWithSector("XOM", model.SectorEnergy), Share: 1}

	got := CalculateSectorRatios([]model.StockShare{aapl, msft, xom})

	require.Contains(t, got, model.SectorTechnology)
	tech := got[model.SectorTechnology]
	require.Len(t, tech.StockShares, 2)
	assert.Equal(t, "AAPL", tech.StockShares[0].Stock.Ticker)
	assert.Equal(t, 2, tech.StockShares[0].Share)
	assert.Equal(t, "MSFT", tech.StockShares[1].Stock.Ticker)
}
