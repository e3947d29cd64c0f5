package redis_repo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// ICartRepository 購物車儲存介面
type ICartRepository interface {
	Get(ctx context.Context, userID uint) (*model.Cart, error)
	AddQuantity(ctx context.Context, userID uint, productID uint, delta int, maxQuantity int) (int, error)
	SetQuantity(ctx context.Context, userID uint, productID uint, quantity int, maxQuantity int) (int, error)
	Remove(ctx context.Context, userID uint, productID uint) error
	Clear(ctx context.Context, userID uint) error
}

type CartRepo struct {
	cartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{cartCache: cartCache}
}

func generateCartItemKey(userID uint) string {
	return fmt.Sprintf("cart:%d:items", userID)
}

// Get 購物車不存在時回傳空車，第一次互動才會真正建立
func (r *CartRepo) Get(ctx context.Context, userID uint) (*model.Cart, error) {
	itemsKey := generateCartItemKey(userID)

	items, err := r.cartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	cart := &model.Cart{
		UserID: userID,
	}
	for productIDStr, quantityStr := range items {
		productID, err := strconv.ParseUint(productIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %s: %w", productIDStr, err)
		}
		quantity, err := strconv.Atoi(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for product %s: %w", productIDStr, err)
		}
		if quantity > 0 {
			cart.Items = append(cart.Items, model.CartItem{
				ProductID: uint(productID),
				Quantity:  quantity,
			})
		}
	}

	return cart, nil
}

// AddQuantity 原子增減, 上限夾在maxQuantity (目前庫存), 超過不報錯直接clamp
// 減到0以下直接移除該商品
func (r *CartRepo) AddQuantity(ctx context.Context, userID uint, productID uint, delta int, maxQuantity int) (int, error) {
	itemsKey := generateCartItemKey(userID)

	// 使用 Lua 腳本執行原子增減
	luaScript := `
		local key = KEYS[1]
		local product_id = ARGV[1]
		local delta = tonumber(ARGV[2])
		local max = tonumber(ARGV[3])

		local current = tonumber(redis.call('HGET', key, product_id) or "0")
		local new = current + delta
		if new <= 0 then
			redis.call('HDEL', key, product_id)
			return 0
		end
		if new > max then
			new = max
		end
		redis.call('HSET', key, product_id, new)
		return new
	`

	result, err := r.cartCache.Eval(ctx, luaScript, []string{itemsKey}, productID, delta, maxQuantity).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add item to cart: %w", err)
	}

	quantity, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected result type: %T", result)
	}
	return int(quantity), nil
}

// SetQuantity 直接設定數量, 同樣夾在maxQuantity, <=0 視為移除
func (r *CartRepo) SetQuantity(ctx context.Context, userID uint, productID uint, quantity int, maxQuantity int) (int, error) {
	itemsKey := generateCartItemKey(userID)

	luaScript := `
		local key = KEYS[1]
		local product_id = ARGV[1]
		local quantity = tonumber(ARGV[2])
		local max = tonumber(ARGV[3])

		if quantity <= 0 then
			redis.call('HDEL', key, product_id)
			return 0
		end
		if quantity > max then
			quantity = max
		end
		redis.call('HSET', key, product_id, quantity)
		return quantity
	`

	result, err := r.cartCache.Eval(ctx, luaScript, []string{itemsKey}, productID, quantity, maxQuantity).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to set cart quantity: %w", err)
	}

	newQuantity, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected result type: %T", result)
	}
	return int(newQuantity), nil
}

// Remove 從購物車中刪除指定商品
func (r *CartRepo) Remove(ctx context.Context, userID uint, productID uint) error {
	itemsKey := generateCartItemKey(userID)
	if err := r.cartCache.HDel(ctx, itemsKey, strconv.FormatUint(uint64(productID), 10)).Err(); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// Clear 清空購物車
func (r *CartRepo) Clear(ctx context.Context, userID uint) error {
	itemsKey := generateCartItemKey(userID)
	if err := r.cartCache.Del(ctx, itemsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

var _ ICartRepository = (*CartRepo)(nil)
