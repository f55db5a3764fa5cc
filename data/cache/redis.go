package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/payout-hq/payout/config"
	"github.com/payout-hq/payout/internal/model"
	"github.com/payout-hq/payout/utils"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func stockDetailKey(ticker string) string {
	return "stock_detail:" + ticker
}

func (r *RedisCache) GetStockDetail(ctx context.Context, ticker string) (model.StockDetail, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetStockDetail start", slog.String("rqID", rqID), slog.String("ticker", ticker))

	res, err := r.redis.Get(ctx, stockDetailKey(ticker)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("ticker", ticker))
		}
		return model.StockDetail{}, err
	}

	detail := model.StockDetail{}
	err = json.Unmarshal([]byte(res), &detail)
	if err != nil {
		slog.Error(
			"can't unmarshall stock detail in GetStockDetail",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.StockDetail{}, errors.New("can't unmarshall stock detail")
	}

	slog.Debug("GetStockDetail finished", slog.String("rqID", rqID))

	return detail, nil
}

func (r *RedisCache) SetStockDetail(ctx context.Context, detail model.StockDetail) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetStockDetail start", slog.String("rqID", rqID), slog.String("ticker", detail.Stock.Ticker))

	detailJson, err := json.Marshal(detail)
	if err != nil {
		slog.Error(
			"can't marshall stock detail in SetStockDetail",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.Any("detail", detail),
		)
		return errors.New("can't marshall stock detail")
	}

	_, err = r.redis.Set(ctx, stockDetailKey(detail.Stock.Ticker), detailJson, r.cfg.Cache.StockDetailExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetStockDetail completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) FlushStockDetails(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("FlushStockDetails start", slog.String("rqID", rqID))

	iter := r.redis.Scan(ctx, 0, stockDetailKey("*"), 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Error("failed on redis.Scan", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	_, err := r.redis.Del(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("FlushStockDetails completed", slog.String("rqID", rqID), slog.Int("deleted", len(keys)))

	return nil
}

// Listing pages (upcoming dividends, top yield) are cached per page under a
// shared prefix so an ingestion cycle can drop them all at once.

func listingKey(listing string, page int) string {
	return fmt.Sprintf("listing:%s:%d", listing, page)
}

func (r *RedisCache) GetListingPage(ctx context.Context, listing string, page int, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, listingKey(listing, page)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("listing", listing))
		}
		return err
	}

	err = json.Unmarshal([]byte(res), dest)
	if err != nil {
		slog.Error("can't unmarshall listing page", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("listing", listing))
		return errors.New("can't unmarshall listing page")
	}

	return nil
}

func (r *RedisCache) FlushListings(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	iter := r.redis.Scan(ctx, 0, "listing:*", 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Error("failed on redis.Scan", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	_, err := r.redis.Del(ctx, keys...).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("FlushListings completed", slog.String("rqID", rqID), slog.Int("deleted", len(keys)))

	return nil
}

func (r *RedisCache) SetListingPage(ctx context.Context, listing string, page int, value any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	valueJson, err := json.Marshal(value)
	if err != nil {
		slog.Error("can't marshall listing page", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("listing", listing))
		return errors.New("can't marshall listing page")
	}

	_, err = r.redis.Set(ctx, listingKey(listing, page), valueJson, r.cfg.Cache.ListingExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("listing", listing))
		return err
	}

	return nil
}
