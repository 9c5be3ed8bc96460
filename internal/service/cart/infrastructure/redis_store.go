// internal/service/cart/infrastructure/redis_store.go
package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"atelier/internal/pkg/redis"
	"atelier/internal/service/cart/domain"
)

const (
	saveCartScriptName = "save_cart"

	// 购物车保留 30 天，活跃购物车每次保存都会续期
	cartTTLSeconds = 30 * 24 * 3600
)

// saveCartScript 以 Lua 脚本实现带版本检查的保存（CAS）。
// 存储中的版本与期望版本不一致时不写入并返回 0。
// 脚本在 Redis 内原子执行，这是乐观并发检查的保证。
const saveCartScript = `
local v = redis.call('HGET', KEYS[1], 'version')
local expected = tonumber(ARGV[1])
if (v == false and expected == 0) or (v ~= false and tonumber(v) == expected) then
  redis.call('HSET', KEYS[1], 'data', ARGV[2], 'version', expected + 1)
  redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
  return 1
end
return 0
`

// RedisCartStore 是 CartStore 的 Redis 实现。
// 购物车整体以 JSON 存储，版本号单独存放供 CAS 脚本比较。
type RedisCartStore struct {
	redisClient *redis.Client
}

// NewRedisCartStore 创建一个新的购物车存储实例。
// 创建时加载所需的 Lua 脚本。
func NewRedisCartStore(redisClient *redis.Client) (*RedisCartStore, error) {
	if err := redisClient.LoadScriptFromContent(saveCartScriptName, saveCartScript); err != nil {
		return nil, fmt.Errorf("failed to load cart save script: %w", err)
	}
	return &RedisCartStore{redisClient: redisClient}, nil
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart:{%s}", cartID)
}

// Get 加载购物车，不存在时返回版本为零的空购物车。
func (s *RedisCartStore) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	values, err := s.redisClient.GetClient().HMGet(ctx, cartKey(cartID), "data", "version").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}

	data, _ := values[0].(string)
	if data == "" {
		return domain.NewCart(cartID), nil
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("corrupt cart data for %s: %w", cartID, err)
	}
	return &cart, nil
}

// Save 带版本检查地保存购物车。
// JSON 载荷中的版本号与哈希字段保持一致（都是保存后的新版本），
// 这样 Get 读到的版本可以直接用作下一次保存的期望值。
func (s *RedisCartStore) Save(ctx context.Context, cart *domain.Cart) error {
	expected := cart.Version
	cart.Version = expected + 1
	payload, err := json.Marshal(cart)
	if err != nil {
		cart.Version = expected
		return fmt.Errorf("failed to marshal cart %s: %w", cart.ID, err)
	}

	result, err := s.redisClient.RunScript(ctx, saveCartScriptName,
		[]string{cartKey(cart.ID)}, expected, string(payload), cartTTLSeconds)
	if err != nil {
		cart.Version = expected
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}

	code, ok := result.(int64)
	if !ok {
		cart.Version = expected
		return fmt.Errorf("unexpected result type from cart save script: %T", result)
	}
	if code == 0 {
		cart.Version = expected
		return domain.ErrCartConflict
	}
	return nil
}

// Delete 删除购物车。
func (s *RedisCartStore) Delete(ctx context.Context, cartID string) error {
	return s.redisClient.GetClient().Del(ctx, cartKey(cartID)).Err()
}
