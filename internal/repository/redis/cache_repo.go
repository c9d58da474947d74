package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/online-store/internal/cfg"
	"github.com/DRSN-tech/online-store/internal/repository/redis/converter"
	"github.com/DRSN-tech/online-store/internal/usecase"
	"github.com/DRSN-tech/online-store/pkg/clients"
	"github.com/DRSN-tech/online-store/pkg/e"
	"github.com/DRSN-tech/online-store/pkg/logger"
	"github.com/jimlawless/whereami"
	goredis "github.com/redis/go-redis/v9"
)

type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductInfoConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductInfoConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProduct возвращает закэшированный продукт либо (nil, nil) при промахе
func (r *CacheRepo) GetProduct(ctx context.Context, id int64) (*usecase.ProductInfo, error) {
	key := r.productKey(id)

	data, err := r.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil // cache miss
		}
		r.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := r.unmarshalProductFromCache(data)
	if err != nil {
		r.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, nil
	}

	if model.ID != id {
		r.logger.Warnf("Cache ID mismatch: key_id: %d, model_id: %d", id, model.ID)
		if err := r.client.Client.Del(context.Background(), key).Err(); err != nil {
			r.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, nil // cache miss
	}

	return r.conv.ToUseCase(model), nil
}

// SetProduct кэширует продукт с заданным TTL.
// Игнорирует ошибки сериализации/записи, логируя их.
func (r *CacheRepo) SetProduct(ctx context.Context, product *usecase.ProductInfo) error {
	model := r.conv.ToRedisModel(product)

	data, err := r.marshalProductForCache(model)
	if err != nil {
		r.logger.Warnf("Failed to marshal product for caching (Product ID: %d): %v", model.ID, e.Wrap(whereami.WhereAmI(), err))
		return nil
	}

	key := r.productKey(model.ID)
	if err := r.client.Client.Set(ctx, key, data, r.cfg.ProductTTL).Err(); err != nil {
		r.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteProducts атомарно удаляет продукты из кэша по ID
func (r *CacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := r.buildProductCacheKeys(ids)

	if err := r.client.Client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// marshalProductForCache сериализует продукт в JSON для кэша
func (r *CacheRepo) marshalProductForCache(model *converter.ProductInfoRedisModel) ([]byte, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// unmarshalProductFromCache десериализует JSON из кэша в модель продукта
func (r *CacheRepo) unmarshalProductFromCache(data []byte) (*converter.ProductInfoRedisModel, error) {
	var model converter.ProductInfoRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// buildProductCacheKeys формирует Redis-ключи из ID продуктов
func (r *CacheRepo) buildProductCacheKeys(ids []int64) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.productKey(id)
	}

	return keys
}

// productKey возвращает Redis-ключ для одного продукта
func (r *CacheRepo) productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
