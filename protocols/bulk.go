package protocols

import "context"

type BulkIdempotencyResult struct {
	Success bool
	Error   error
}

// BulkGateway guards bulk-update requests against re-submission: a key is
// reserved before work starts and marked success/failure afterwards.
type BulkGateway interface {
	ReserveIdempotencyKey(ctx context.Context, idempotencyKey string) (*BulkIdempotencyResult, error)
	MarkFailure(ctx context.Context, idempotencyKey string) error
	MarkSuccess(ctx context.Context, idempotencyKey string) error
}
