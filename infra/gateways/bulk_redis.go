package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thanhvu/hotelier/protocols"
)

const (
	bulkKeyPrefix = "idempotency:bulk-update:"
	bulkKeyTTL    = 24 * time.Hour
)

type bulkRedisState struct {
	Status string                           `json:"status"`
	Result *protocols.BulkIdempotencyResult `json:"result,omitempty"`
}

// BulkGatewayRedis stores bulk-update idempotency keys in Redis so repeated
// submissions of the same request are absorbed across instances.
type BulkGatewayRedis struct {
	client *redis.Client
}

func NewBulkGatewayRedis(client *redis.Client) *BulkGatewayRedis {
	return &BulkGatewayRedis{client: client}
}

func (g *BulkGatewayRedis) key(idempotencyKey string) string {
	return bulkKeyPrefix + idempotencyKey
}

func (g *BulkGatewayRedis) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.BulkIdempotencyResult, error) {
	k := g.key(idempotencyKey)

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := g.client.Get(ctx, k).Bytes()
		if err == redis.Nil {
			state := bulkRedisState{Status: "processing"}
			raw, _ := json.Marshal(state)
			_, err := g.client.SetArgs(ctx, k, raw, redis.SetArgs{Mode: "NX", TTL: bulkKeyTTL}).Result()
			if err == redis.Nil {
				// Lost the race, re-read whoever won.
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		var state bulkRedisState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("redis unmarshal: %w", err)
		}

		switch state.Status {
		case "success":
			return state.Result, nil
		case "processing":
			return nil, errors.New("idempotency key is already being processed")
		default:
			_ = g.client.Del(ctx, k).Err()
			newState := bulkRedisState{Status: "processing"}
			raw, _ := json.Marshal(newState)
			if err := g.client.Set(ctx, k, raw, bulkKeyTTL).Err(); err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
	}
}

func (g *BulkGatewayRedis) MarkFailure(ctx context.Context, idempotencyKey string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return g.client.Del(ctx, g.key(idempotencyKey)).Err()
}

func (g *BulkGatewayRedis) MarkSuccess(ctx context.Context, idempotencyKey string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	state := bulkRedisState{
		Status: "success",
		Result: &protocols.BulkIdempotencyResult{Success: true, Error: nil},
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return g.client.Set(ctx, g.key(idempotencyKey), raw, bulkKeyTTL).Err()
}
