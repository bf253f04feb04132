package protocols

import (
	"context"

	"github.com/thanhvu/hotelier/domain/calendar"
	"github.com/thanhvu/hotelier/domain/room"
)

// RoomInventory is one room's defaults plus its sparse override state, as
// read from the backend.
type RoomInventory struct {
	Room      room.Room
	Overrides room.Overrides
}

// OverrideUpdate carries the changed fields for one date. Nil fields are
// not touched on the stored record.
type OverrideUpdate struct {
	Date      calendar.Date
	Price     *int64
	Available *int
	StopSell  *bool
}

type InventoryGateway interface {
	GetHotelInventory(ctx context.Context, hotelID string, start, end calendar.Date) ([]RoomInventory, error)
	BulkUpdateInventory(ctx context.Context, roomID string, updates []OverrideUpdate) error
}
