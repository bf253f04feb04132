package resolve

import (
	"context"

	"github.com/thanhvu/hotelier/domain/calendar"
	"github.com/thanhvu/hotelier/domain/room"
	"github.com/thanhvu/hotelier/infra"
	"github.com/thanhvu/hotelier/protocols"
)

type Input struct {
	HotelID string
	Start   calendar.Date
	End     calendar.Date
}

type DayInventory struct {
	Date      calendar.Date
	Price     int64
	Available int
	StopSell  bool
}

type RoomCalendar struct {
	RoomID string
	Name   string
	Days   []DayInventory
}

type Output struct {
	Rooms []RoomCalendar
}

// Resolve answers the partner calendar screen: per room, the effective
// {price, available, stopSell} for every date in the window. Bounds left
// empty default to [today, today+30].
type Resolve struct {
	inventoryGateway protocols.InventoryGateway
	clock            protocols.Clock
}

func NewResolve(inventoryGateway protocols.InventoryGateway, clock protocols.Clock) *Resolve {
	return &Resolve{
		inventoryGateway: inventoryGateway,
		clock:            clock,
	}
}

func (r *Resolve) Resolve(ctx context.Context, input Input) (Output, error) {
	dates, err := calendar.SelectDates(r.clock.Today(), calendar.PatternAll, input.Start, input.End)
	if err != nil {
		return Output{}, infra.NewValidationError(err.Error())
	}

	inventories, err := r.inventoryGateway.GetHotelInventory(ctx, input.HotelID, dates[0], dates[len(dates)-1])
	if err != nil {
		return Output{}, err
	}

	out := Output{Rooms: make([]RoomCalendar, 0, len(inventories))}
	for _, inv := range inventories {
		cal := RoomCalendar{
			RoomID: inv.Room.ID,
			Name:   inv.Room.Name,
			Days:   make([]DayInventory, 0, len(dates)),
		}
		for _, date := range dates {
			eff := room.ResolveEffective(inv.Room, inv.Overrides, date)
			cal.Days = append(cal.Days, DayInventory{
				Date:      date,
				Price:     eff.Price,
				Available: eff.Available,
				StopSell:  eff.StopSell,
			})
		}
		out.Rooms = append(out.Rooms, cal)
	}
	return out, nil
}
