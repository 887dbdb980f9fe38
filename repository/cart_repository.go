package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"checkout-service/models"
)

// IdempotencyInProgress is the placeholder an idempotency key holds
// between being claimed and being bound to a committed order. Order ids
// are UUIDs, so the marker can never collide with a real binding.
const IdempotencyInProgress = "in-progress"

// CartRepository stores one cart per user plus the idempotency-key mapping
// used to deduplicate retried checkouts.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, userID string) error
	// ReserveIdempotentKey atomically claims the key for one in-flight
	// checkout. It reports false when the key is already claimed or bound.
	ReserveIdempotentKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	GetIdempotentOrder(ctx context.Context, key string) (string, error)
	PutIdempotentOrder(ctx context.Context, key, orderID string, ttl time.Duration) error
	DeleteIdempotentKey(ctx context.Context, key string) error
}

// RedisCartRepository keeps carts as JSON blobs with a TTL so abandoned
// carts expire on their own.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCartRepository) cartKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (r *RedisCartRepository) idemKey(key string) string {
	return "idem:checkout:" + key
}

// Get returns the user's cart, or nil when none exists.
func (r *RedisCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.cartKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.cartKey(cart.UserID), data, r.ttl).Err()
}

func (r *RedisCartRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.cartKey(userID)).Err()
}

// ReserveIdempotentKey claims the key with a SETNX so two concurrent
// first attempts can never both proceed to commit.
func (r *RedisCartRepository) ReserveIdempotentKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.idemKey(key), IdempotencyInProgress, ttl).Result()
}

// GetIdempotentOrder returns the order id previously committed under the
// given idempotency key, the in-progress marker, or "" when the key is
// unknown.
func (r *RedisCartRepository) GetIdempotentOrder(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.idemKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisCartRepository) PutIdempotentOrder(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.idemKey(key), orderID, ttl).Err()
}

// DeleteIdempotentKey releases a claimed key after a failed checkout so a
// retry can run the saga again.
func (r *RedisCartRepository) DeleteIdempotentKey(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.idemKey(key)).Err()
}
