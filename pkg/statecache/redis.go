package statecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the remote cache client.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// OpTimeout bounds each cache operation. Cache work sits inside the
	// request latency budget, so this defaults to a few milliseconds.
	OpTimeout time.Duration

	// PingTimeout bounds connectivity probes (sub-millisecond budget).
	PingTimeout time.Duration
}

// RedisKV implements KV over a redis client.
type RedisKV struct {
	client *redis.Client
	cfg    RedisConfig
}

// NewRedisKV builds the client; connectivity is verified by the caller's
// warmup ping so construction itself does not block.
func NewRedisKV(cfg RedisConfig) *RedisKV {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 5 * time.Millisecond
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = time.Millisecond
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisKV{client: client, cfg: cfg}
}

// ReadState implements KV. All four keys are fetched in one pipelined round
// trip.
func (r *RedisKV) ReadState(ctx context.Context, keys StateKeys) (*StateSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OpTimeout)
	defer cancel()

	var (
		fieldsCmd   *redis.StringCmd
		entitiesCmd *redis.StringCmd
		metaCmd     *redis.StringCmd
		answeredCmd *redis.StringSliceCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fieldsCmd = pipe.Get(ctx, keys.Fields)
		entitiesCmd = pipe.Get(ctx, keys.Entities)
		metaCmd = pipe.Get(ctx, keys.Meta)
		answeredCmd = pipe.SMembers(ctx, keys.Answered)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read state keys: %w", err)
	}

	snap := &StateSnapshot{}
	snap.Fields = bytesOrNil(fieldsCmd)
	snap.Entities = bytesOrNil(entitiesCmd)
	snap.Meta = bytesOrNil(metaCmd)
	if members, err := answeredCmd.Result(); err == nil {
		snap.Answered = members
	}
	return snap, nil
}

// WriteState implements KV with a MULTI/EXEC transaction so the four keys
// change together.
func (r *RedisKV) WriteState(ctx context.Context, keys StateKeys, w StateWrite) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OpTimeout)
	defer cancel()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keys.Fields, w.Fields, w.TTL)
		pipe.Set(ctx, keys.Entities, w.Entities, w.TTL)
		pipe.Set(ctx, keys.Meta, w.Meta, w.TTL)
		pipe.Del(ctx, keys.Answered)
		if len(w.Answered) > 0 {
			members := make([]any, len(w.Answered))
			for i, id := range w.Answered {
				members[i] = id
			}
			pipe.SAdd(ctx, keys.Answered, members...)
			pipe.Expire(ctx, keys.Answered, w.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write state keys: %w", err)
	}
	return nil
}

// DeleteState implements KV.
func (r *RedisKV) DeleteState(ctx context.Context, keys StateKeys) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OpTimeout)
	defer cancel()

	if err := r.client.Del(ctx, keys.Fields, keys.Entities, keys.Answered, keys.Meta).Err(); err != nil {
		return fmt.Errorf("delete state keys: %w", err)
	}
	return nil
}

// Exists implements KV.
func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OpTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Ping implements KV.
func (r *RedisKV) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.PingTimeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

// Close implements KV.
func (r *RedisKV) Close() error {
	return r.client.Close()
}

func bytesOrNil(cmd *redis.StringCmd) []byte {
	data, err := cmd.Bytes()
	if err != nil {
		return nil
	}
	return data
}
