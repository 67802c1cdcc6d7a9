package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key is the Redis list name the spec fixes as the queue's identity.
const Key = "code-execution-queue"

// RedisQueue backs Queue with a Redis list, using RPUSH/BLPOP/LLEN exactly
// as the data model in §3 and §6 of the spec describes.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// Config holds the connection settings for a RedisQueue.
type Config struct {
	Addr     string // host:port
	Password string // optional
	DB       int
}

// New connects to Redis and verifies the connection with a PING, following
// the same connect-and-verify shape the reference repo's Valkey store uses.
func New(cfg Config) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("queue: connecting to redis: %w", err)
	}

	return &RedisQueue{client: client, key: Key}, nil
}

func (q *RedisQueue) PushRight(ctx context.Context, value []byte) error {
	if err := q.client.RPush(ctx, q.key, value).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (q *RedisQueue) BlockingPopLeft(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// BLPOP returns [key, value].
	if len(res) < 2 {
		return nil, ErrEmpty
	}
	return []byte(res[1]), nil
}

func (q *RedisQueue) Length(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n, nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

var _ Queue = (*RedisQueue)(nil)
