package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/payout-hq/payout/internal/transport/httpapi/middleware"
)

func NewRouter(controller *Controller) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recover, middleware.Logger)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stocks/search", controller.SearchStocks).Methods(http.MethodGet)
	api.HandleFunc("/stocks/sector-ratio", controller.AnalyzeSectorRatio).Methods(http.MethodPost)
	api.HandleFunc("/stocks/{ticker}", controller.GetStockDetail).Methods(http.MethodGet)
	api.HandleFunc("/dividends/upcoming", controller.GetUpcomingDividends).Methods(http.MethodGet)
	api.HandleFunc("/dividends/top-yield", controller.GetTopDividendYield).Methods(http.MethodGet)

	return r
}
