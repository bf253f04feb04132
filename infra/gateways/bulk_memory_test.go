package gateways

import (
	"context"
	"testing"
)

func TestBulkGatewayMemory_ReserveThenSuccess(t *testing.T) {
	g := NewBulkGatewayMemory()
	ctx := context.Background()

	result, err := g.ReserveIdempotencyKey(ctx, "k1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result != nil {
		t.Fatalf("fresh key must not replay, got %+v", result)
	}

	// Concurrent holder is rejected while processing.
	if _, err := g.ReserveIdempotencyKey(ctx, "k1"); err == nil {
		t.Fatalf("expected error while key is processing")
	}

	if err := g.MarkSuccess(ctx, "k1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	result, err = g.ReserveIdempotencyKey(ctx, "k1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result == nil || !result.Success {
		t.Fatalf("expected replayed success, got %+v", result)
	}
}

func TestBulkGatewayMemory_FailureFreesKey(t *testing.T) {
	g := NewBulkGatewayMemory()
	ctx := context.Background()

	if _, err := g.ReserveIdempotencyKey(ctx, "k1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := g.MarkFailure(ctx, "k1"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	result, err := g.ReserveIdempotencyKey(ctx, "k1")
	if err != nil {
		t.Fatalf("a failed key must be reservable again, got %v", err)
	}
	if result != nil {
		t.Fatalf("a failed key must not replay, got %+v", result)
	}
}
