package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

var _ StockCache = (*RedisStockCache)(nil)

// RedisStockCache implementación de StockCache sobre Redis.
type RedisStockCache struct {
	client *redis.Client
}

// NewRedisStockCache construye el caché con un cliente nuevo.
func NewRedisStockCache(addr, password string, db int) *RedisStockCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStockCache{client: client}
}

// Ping verifica la conexión.
func (c *RedisStockCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisStockCache) Close() error {
	return c.client.Close()
}

// stockPayload forma serializada de la instantánea (decimal como string).
type stockPayload struct {
	ProductID        string    `json:"product_id"`
	BranchID         string    `json:"branch_id"`
	CurrentQuantity  string    `json:"current_quantity"`
	ReservedQuantity string    `json:"reserved_quantity"`
	MinimumQuantity  string    `json:"minimum_quantity"`
	MaximumQuantity  string    `json:"maximum_quantity"`
	LastUpdated      time.Time `json:"last_updated"`
}

func stockKey(productID, branchID string) string {
	return fmt.Sprintf("stock:%s:%s", branchID, productID)
}

// GetStock obtiene la instantánea cacheada; (nil, false, nil) si no está.
func (c *RedisStockCache) GetStock(ctx context.Context, productID, branchID string) (*entity.Stock, bool, error) {
	val, err := c.client.Get(ctx, stockKey(productID, branchID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var p stockPayload
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, false, err
	}
	stock, err := p.toEntity()
	if err != nil {
		return nil, false, err
	}
	return stock, true, nil
}

// SetStock guarda la instantánea con TTL.
func (c *RedisStockCache) SetStock(ctx context.Context, stock *entity.Stock, ttl time.Duration) error {
	if stock == nil {
		return nil
	}
	p := stockPayload{
		ProductID:        stock.ProductID,
		BranchID:         stock.BranchID,
		CurrentQuantity:  stock.CurrentQuantity.String(),
		ReservedQuantity: stock.ReservedQuantity.String(),
		MinimumQuantity:  stock.MinimumQuantity.String(),
		MaximumQuantity:  stock.MaximumQuantity.String(),
		LastUpdated:      stock.LastUpdated,
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, stockKey(stock.ProductID, stock.BranchID), payload, ttl).Err()
}

// Invalidate elimina la instantánea cacheada tras una mutación confirmada.
func (c *RedisStockCache) Invalidate(ctx context.Context, productID, branchID string) error {
	return c.client.Del(ctx, stockKey(productID, branchID)).Err()
}

func (p stockPayload) toEntity() (*entity.Stock, error) {
	current, err := decimal.NewFromString(p.CurrentQuantity)
	if err != nil {
		return nil, err
	}
	reserved, err := decimal.NewFromString(p.ReservedQuantity)
	if err != nil {
		return nil, err
	}
	minimum, err := decimal.NewFromString(p.MinimumQuantity)
	if err != nil {
		return nil, err
	}
	maximum, err := decimal.NewFromString(p.MaximumQuantity)
	if err != nil {
		return nil, err
	}
	return &entity.Stock{
		ProductID:        p.ProductID,
		BranchID:         p.BranchID,
		CurrentQuantity:  current,
		ReservedQuantity: reserved,
		MinimumQuantity:  minimum,
		MaximumQuantity:  maximum,
		LastUpdated:      p.LastUpdated,
	}, nil
}
