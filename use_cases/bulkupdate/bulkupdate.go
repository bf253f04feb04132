package bulkupdate

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/thanhvu/hotelier/domain/calendar"
	"github.com/thanhvu/hotelier/domain/room"
	"github.com/thanhvu/hotelier/infra"
	"github.com/thanhvu/hotelier/protocols"
)

var (
	MaxRetries = 3
	BaseDelay  = 500 * time.Millisecond
)

type Operation string

const (
	OpPrice        Operation = "price"
	OpAvailability Operation = "availability"
	OpStopSell     Operation = "stopSell"
)

type PriceMode string

const (
	PricePercent PriceMode = "percent"
	PriceFixed   PriceMode = "fixed"
)

type Input struct {
	HotelID        string
	IdempotencyKey string
	Op             Operation
	PriceMode      PriceMode
	PriceValue     decimal.Decimal
	Available      int
	StopSell       bool
	Pattern        calendar.Pattern
	Start          calendar.Date
	End            calendar.Date
	RoomIDs        []string
}

// RoomOutcome reports one room's sub-operation: how many date records were
// submitted and the error if the room failed. One room failing never stops
// the others.
type RoomOutcome struct {
	RoomID  string
	Updates int
	Err     error
}

type Output struct {
	// Replayed is true when the idempotency key was already marked
	// successful; no work was done.
	Replayed bool
	Outcomes []RoomOutcome
}

func (o Output) Succeeded() []RoomOutcome {
	var out []RoomOutcome
	for _, r := range o.Outcomes {
		if r.Err == nil {
			out = append(out, r)
		}
	}
	return out
}

func (o Output) Failed() []RoomOutcome {
	var out []RoomOutcome
	for _, r := range o.Outcomes {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

type BulkUpdate struct {
	inventoryGateway protocols.InventoryGateway
	bulkGateway      protocols.BulkGateway
	clock            protocols.Clock
	sleeper          protocols.Sleeper
	workers          int64
}

func NewBulkUpdate(inventoryGateway protocols.InventoryGateway, bulkGateway protocols.BulkGateway, clock protocols.Clock, sleeper protocols.Sleeper, workers int) *BulkUpdate {
	if workers < 1 {
		workers = 1
	}
	return &BulkUpdate{
		inventoryGateway: inventoryGateway,
		bulkGateway:      bulkGateway,
		clock:            clock,
		sleeper:          sleeper,
		workers:          int64(workers),
	}
}

// Apply validates the request, reconciles the new override records per
// room and date, and submits one batched persistence call per room.
// Validation failures are rejected before any write; per-room failures are
// collected into the output, never thrown on first failure.
func (b *BulkUpdate) Apply(ctx context.Context, input Input) (Output, error) {
	if err := validate(input); err != nil {
		return Output{}, err
	}
	dates, err := b.selectDates(input)
	if err != nil {
		return Output{}, err
	}

	if input.IdempotencyKey != "" {
		result, err := b.bulkGateway.ReserveIdempotencyKey(ctx, input.IdempotencyKey)
		if err != nil {
			return Output{}, err
		}
		if result != nil {
			return Output{Replayed: true}, nil
		}
	}

	success := false
	defer func() {
		if input.IdempotencyKey == "" {
			return
		}
		if success {
			b.bulkGateway.MarkSuccess(context.WithoutCancel(ctx), input.IdempotencyKey)
		} else {
			b.bulkGateway.MarkFailure(context.WithoutCancel(ctx), input.IdempotencyKey)
		}
	}()

	inventories, err := b.inventoryGateway.GetHotelInventory(ctx, input.HotelID, dates[0], dates[len(dates)-1])
	if err != nil {
		return Output{}, err
	}
	byID := make(map[string]protocols.RoomInventory, len(inventories))
	for _, inv := range inventories {
		byID[inv.Room.ID] = inv
	}

	outcomes := make([]RoomOutcome, len(input.RoomIDs))
	sem := semaphore.NewWeighted(b.workers)
	var wg sync.WaitGroup
	for i, roomID := range input.RoomIDs {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Caller abandoned the operation; rooms not yet submitted
			// are reported as failed, submitted ones are not rolled back.
			outcomes[i] = RoomOutcome{RoomID: roomID, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, roomID string) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = b.applyRoom(ctx, input, byID, dates, roomID)
		}(i, roomID)
	}
	wg.Wait()

	out := Output{Outcomes: outcomes}
	success = len(out.Failed()) == 0
	return out, nil
}

func (b *BulkUpdate) selectDates(input Input) ([]calendar.Date, error) {
	dates, err := calendar.SelectDates(b.clock.Today(), input.Pattern, input.Start, input.End)
	if err != nil {
		return nil, infra.NewValidationError(err.Error())
	}
	if len(dates) == 0 {
		return nil, infra.NewValidationError("date selection yields no dates")
	}
	return dates, nil
}

func validate(input Input) error {
	if len(input.RoomIDs) == 0 {
		return infra.NewValidationError("no rooms selected")
	}
	if !input.Pattern.Valid() {
		return infra.NewValidationError("unknown date pattern")
	}
	switch input.Op {
	case OpPrice:
		if input.PriceMode != PricePercent && input.PriceMode != PriceFixed {
			return infra.NewValidationError("price operation needs a percent or fixed mode")
		}
	case OpAvailability, OpStopSell:
	default:
		return infra.NewValidationError("unknown operation kind")
	}
	return nil
}

func (b *BulkUpdate) applyRoom(ctx context.Context, input Input, byID map[string]protocols.RoomInventory, dates []calendar.Date, roomID string) RoomOutcome {
	inv, ok := byID[roomID]
	if !ok {
		return RoomOutcome{RoomID: roomID, Err: infra.NewUnknownRoomError(roomID)}
	}

	updates := buildUpdates(input, inv, dates)

	submit := func() error {
		return b.inventoryGateway.BulkUpdateInventory(ctx, roomID, updates)
	}
	if err := retryWithBackoff(submit, b.sleeper); err != nil {
		return RoomOutcome{RoomID: roomID, Err: infra.NewPersistenceError(roomID, err)}
	}
	return RoomOutcome{RoomID: roomID, Updates: len(updates)}
}

// buildUpdates computes one OverrideUpdate per target date, touching only
// the field the operation kind names. Deltas are applied to the current
// effective value and clamped to the room invariants.
func buildUpdates(input Input, inv protocols.RoomInventory, dates []calendar.Date) []protocols.OverrideUpdate {
	updates := make([]protocols.OverrideUpdate, 0, len(dates))
	for _, date := range dates {
		eff := room.ResolveEffective(inv.Room, inv.Overrides, date)
		upd := protocols.OverrideUpdate{Date: date}
		switch input.Op {
		case OpPrice:
			upd.Price = room.PricePtr(newPrice(eff.Price, input.PriceMode, input.PriceValue))
		case OpAvailability:
			upd.Available = room.CountPtr(room.ClampAvailable(input.Available, inv.Room.TotalCount))
		case OpStopSell:
			upd.StopSell = room.BoolPtr(input.StopSell)
		}
		updates = append(updates, upd)
	}
	return updates
}

func newPrice(current int64, mode PriceMode, value decimal.Decimal) int64 {
	cur := decimal.NewFromInt(current)
	var next decimal.Decimal
	switch mode {
	case PricePercent:
		hundred := decimal.NewFromInt(100)
		next = cur.Mul(hundred.Add(value)).Div(hundred)
	case PriceFixed:
		next = cur.Add(value)
	}
	return room.ClampPrice(next.Round(0).IntPart())
}

func retryWithBackoff(operation func() error, sleeper protocols.Sleeper) error {
	var lastError error
	for i := 0; i < MaxRetries; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastError = err
		if !infra.IsRetriable(err) {
			return err
		}
		sleeper.Sleep(BaseDelay * time.Duration(1<<i))
	}
	return lastError
}
