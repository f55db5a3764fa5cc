package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/payout-hq/payout/internal/converter/httpConverter"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/httpModel"
	"github.com/payout-hq/payout/internal/service"
	"github.com/payout-hq/payout/utils"
)

type StockService interface {
	GetStockDetail(ctx context.Context, ticker string) (model.StockDetail, error)
	AnalyzeSectorRatio(ctx context.Context, tickerShares []model.TickerShare) ([]model.SectorRatio, error)
	SearchStocks(ctx context.Context, keyword string, page int) ([]model.Stock, error)
	GetUpcomingDividends(ctx context.Context, page int) ([]model.StockDividend, error)
	GetTopDividendYield(ctx context.Context, page int) ([]model.StockYield, error)
}

type Controller struct {
	stockService StockService
	validate     *validator.Validate
}

func NewController(stockService StockService) *Controller {
	return &Controller{
		stockService: stockService,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (c *Controller) GetStockDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	detail, err := c.stockService.GetStockDetail(ctx, ticker)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, httpConverter.ConvertStockDetail(detail))
}

func (c *Controller) AnalyzeSectorRatio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := httpModel.SectorRatioRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := c.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tickerShares := make([]model.TickerShare, 0, len(req.TickerShares))
	for _, ts := range req.TickerShares {
		tickerShares = append(tickerShares, model.TickerShare{Ticker: ts.Ticker, Share: ts.Share})
	}

	ratios, err := c.stockService.AnalyzeSectorRatio(ctx, tickerShares)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, httpConverter.ConvertSectorRatios(ratios))
}

func (c *Controller) SearchStocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	stocks, err := c.stockService.SearchStocks(ctx, keyword, pageParam(r))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, httpConverter.ConvertStocks(stocks))
}

func (c *Controller) GetUpcomingDividends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := c.stockService.GetUpcomingDividends(ctx, pageParam(r))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, httpConverter.ConvertUpcomingDividends(rows))
}

func (c *Controller) GetTopDividendYield(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := c.stockService.GetTopDividendYield(ctx, pageParam(r))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, httpConverter.ConvertStockYields(rows))
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		rqID := utils.GetRequestIDFromCtx(ctx)
		slog.Error("internal error", slog.String("rqID", rqID), slog.String("err", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(httpModel.ErrorResponse{Error: msg})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		rqID := utils.GetRequestIDFromCtx(ctx)
		slog.Error("failed to encode response", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
}
