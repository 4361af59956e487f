package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"news-backend/internal/domain"
)

// RedisDiscoveryQueue реализует очередь заданий поиска на базе Redis lists.
type RedisDiscoveryQueue struct {
	client *redis.Client
	key    string
}

// NewRedisDiscoveryQueue создаёт очередь по указанному ключу.
func NewRedisDiscoveryQueue(client *redis.Client, key string) *RedisDiscoveryQueue {
	return &RedisDiscoveryQueue{client: client, key: key}
}

// Enqueue публикует задание в очередь.
func (q *RedisDiscoveryQueue) Enqueue(ctx context.Context, job domain.DiscoveryJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Pop блокирующе читает задание из очереди.
func (q *RedisDiscoveryQueue) Pop(ctx context.Context) (domain.DiscoveryJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.DiscoveryJob{}, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.DiscoveryJob{}, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.DiscoveryJob{}, err
		}
		if len(res) != 2 {
			return domain.DiscoveryJob{}, errors.New("redis queue: unexpected response")
		}
		var job domain.DiscoveryJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.DiscoveryJob{}, fmt.Errorf("decode job: %w", err)
		}
		return job, nil
	}
}
