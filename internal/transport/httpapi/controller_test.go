package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStockService struct {
	detail model.StockDetail
	ratios []model.SectorRatio
}

func (f *fakeStockService) GetStockDetail(_ context.Context, ticker string) (model.StockDetail, error) {
	if f.detail.Stock.Ticker != ticker {
		return model.StockDetail{}, fmt.Errorf("ticker %s: %w", ticker, service.ErrNotFound)
	}
	return f.detail, nil
}

func (f *fakeStockService) AnalyzeSectorRatio(_ context.Context, _ []model.TickerShare) ([]model.SectorRatio, error) {
	return f.ratios, nil
}

func (f *fakeStockService) SearchStocks(_ context.Context, _ string, _ int) ([]model.Stock, error) {
	return nil, nil
}

func (f *fakeStockService) GetUpcomingDividends(_ context.Context, _ int) ([]model.StockDividend, error) {
	return nil, nil
}

func (f *fakeStockService) GetTopDividendYield(_ context.Context, _ int) ([]model.StockYield, error) {
	return nil, nil
}

func newTestRouter(svc StockService) http.Handler {
	return NewRouter(NewController(svc))
}

func TestGetStockDetail_OK(t *testing.T) {
	svc := &fakeStockService{
		detail: model.StockDetail{
			Stock: model.Stock{Ticker: "KO", Name: "Coca-Cola", Sector: model.SectorConsumerDefensive, Price: decimal.NewFromInt(60)},
		},
	}

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stocks/KO", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticker":"KO"`)
	assert.Contains(t, rec.Body.String(), `"dividendMonths":[]`)
}

func TestGetStockDetail_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeStockService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stocks/ZZZZ", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ZZZZ")
}

func TestAnalyzeSectorRatio_EmptyListRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/stocks/sector-ratio", strings.NewReader(`{"tickerShares":[]}`))
	newTestRouter(&fakeStockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeSectorRatio_BadBodyRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/stocks/sector-ratio", strings.NewReader("not json"))
	newTestRouter(&fakeStockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchStocks_KeywordRequired(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeStockService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stocks/search", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
