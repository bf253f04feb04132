package gateways

import (
	"context"
	"errors"
	"sync"

	"github.com/thanhvu/hotelier/protocols"
)

// BulkGatewayMemory is the single-instance fallback when Redis is not
// configured.
type BulkGatewayMemory struct {
	mutex sync.RWMutex
	keys  map[string]*bulkMemoryState
}

type bulkMemoryState struct {
	Status string
	Result *protocols.BulkIdempotencyResult
}

func NewBulkGatewayMemory() *BulkGatewayMemory {
	return &BulkGatewayMemory{
		keys: make(map[string]*bulkMemoryState),
	}
}

func (g *BulkGatewayMemory) ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*protocols.BulkIdempotencyResult, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	state, exists := g.keys[idempotencyKey]
	if exists {
		if state.Status == "success" {
			return state.Result, nil
		}
		if state.Status == "processing" {
			return nil, errors.New("idempotency key is already being processed")
		}
		delete(g.keys, idempotencyKey)
	}

	g.keys[idempotencyKey] = &bulkMemoryState{Status: "processing"}
	return nil, nil
}

func (g *BulkGatewayMemory) MarkFailure(ctx context.Context, idempotencyKey string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.keys, idempotencyKey)
	return nil
}

func (g *BulkGatewayMemory) MarkSuccess(ctx context.Context, idempotencyKey string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if state, exists := g.keys[idempotencyKey]; exists {
		state.Status = "success"
		state.Result = &protocols.BulkIdempotencyResult{Success: true, Error: nil}
	}
	return nil
}
