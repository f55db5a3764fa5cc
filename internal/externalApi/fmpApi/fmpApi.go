package fmpApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/internal/externalApi"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/internal/model/fmpModel"
	"github.com/payout-hq/payout/utils"
	"golang.org/x/time/rate"
)

const (
	stockScreenerPath    = "/api/v3/stock-screener"
	stockListPathPrefix  = "/api/v3/symbol/"
	dividendCalendarPath = "/api/v3/stock_dividend_calendar"

	screenerLimit = 1000000

	dateLayout = "2006-01-02"
)

// FmpApi is the Financial Modeling Prep gateway. Calls are rate limited
// client-side; the FMP free tier throttles aggressively.
type FmpApi struct {
	client  *resty.Client
	limiter *rate.Limiter
	apiKey  string
}

func New(cfg *config.Config) *FmpApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.Fmp.Url)

	rps := cfg.API.Fmp.RateLimitRPS
	if rps <= 0 {
		rps = 5
	}

	return &FmpApi{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		apiKey:  cfg.API.Fmp.ApiKey,
	}
}

// FetchStockList returns the screener listing for one sector across the
// tracked exchanges.
func (a *FmpApi) FetchStockList(ctx context.Context, sector model.Sector) ([]fmpModel.StockRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	params := map[string]string{
		"apikey":   a.apiKey,
		"exchange": exchangeParam(),
		"sector":   sector.Name(),
		"limit":    strconv.Itoa(screenerLimit),
	}

	slog.Debug("start FmpApi.FetchStockList request", slog.String("rqID", rqID), slog.String("sector", sector.Name()))

	records := make([]fmpModel.StockRecord, 0)
	if err := a.getJSON(ctx, rqID, stockScreenerPath, params, &records); err != nil {
		return nil, err
	}

	slog.Debug("FmpApi.FetchStockList request complete", slog.String("rqID", rqID), slog.Int("records", len(records)))

	return records, nil
}

// FetchVolumeList returns the full symbol listing of one exchange, carrying
// the volume fields the screener omits.
func (a *FmpApi) FetchVolumeList(ctx context.Context, exchange model.Exchange) ([]fmpModel.VolumeRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	params := map[string]string{"apikey": a.apiKey}

	slog.Debug("start FmpApi.FetchVolumeList request", slog.String("rqID", rqID), slog.String("exchange", string(exchange)))

	records := make([]fmpModel.VolumeRecord, 0)
	if err := a.getJSON(ctx, rqID, stockListPathPrefix+string(exchange), params, &records); err != nil {
		return nil, err
	}

	slog.Debug("FmpApi.FetchVolumeList request complete", slog.String("rqID", rqID), slog.Int("records", len(records)))

	return records, nil
}

// FetchDividendCalendar returns dividend-calendar records up to "to", and
// from "from" when it is non-zero.
func (a *FmpApi) FetchDividendCalendar(ctx context.Context, from, to time.Time) ([]fmpModel.DividendRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	params := map[string]string{
		"apikey": a.apiKey,
		"to":     to.Format(dateLayout),
	}
	if !from.IsZero() {
		params["from"] = from.Format(dateLayout)
	}

	slog.Debug("start FmpApi.FetchDividendCalendar request", slog.String("rqID", rqID), slog.String("to", params["to"]))

	records := make([]fmpModel.DividendRecord, 0)
	if err := a.getJSON(ctx, rqID, dividendCalendarPath, params, &records); err != nil {
		return nil, err
	}

	slog.Debug("FmpApi.FetchDividendCalendar request complete", slog.String("rqID", rqID), slog.Int("records", len(records)))

	return records, nil
}

func (a *FmpApi) getJSON(ctx context.Context, rqID, url string, params map[string]string, dest any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing FmpApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("url", url))
		return err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return externalApi.ErrNotFound
	}

	if resp.IsError() {
		slog.Error("FmpApi returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID), slog.String("url", url))
		return fmt.Errorf("fmp api status %d", resp.StatusCode())
	}

	err = json.Unmarshal(resp.Body(), dest)
	if err != nil {
		slog.Error("can't unmarshall FmpApi response", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("url", url))
		return err
	}

	return nil
}

func exchangeParam() string {
	s := ""
	for i, e := range model.Exchanges() {
		if i > 0 {
			s += ","
		}
		s += string(e)
	}
	return s
}
