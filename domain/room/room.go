package room

import (
	"github.com/thanhvu/hotelier/domain/calendar"
)

// Room carries the defaults every date inherits unless an override says
// otherwise. BasePrice is an integer VND amount.
type Room struct {
	ID         string
	Name       string
	BasePrice  int64
	TotalCount int
}

// Override holds the per-date fields that supersede the room defaults.
// A nil field means "inherit", never zero.
type Override struct {
	Price     *int64
	Available *int
	StopSell  *bool
}

// Overrides is the sparse per-room override state, keyed by calendar date.
type Overrides map[calendar.Date]Override

// Effective is the resolved {price, available, stopSell} triple for one
// room on one date.
type Effective struct {
	Price     int64
	Available int
	StopSell  bool
}

// ResolveEffective overlays the override for date (if any) onto the room
// defaults. Pure read, always returns a complete triple.
func ResolveEffective(r Room, overrides Overrides, date calendar.Date) Effective {
	eff := Effective{
		Price:     r.BasePrice,
		Available: r.TotalCount,
		StopSell:  false,
	}
	ov, ok := overrides[date]
	if !ok {
		return eff
	}
	if ov.Price != nil {
		eff.Price = *ov.Price
	}
	if ov.Available != nil {
		eff.Available = *ov.Available
	}
	if ov.StopSell != nil {
		eff.StopSell = *ov.StopSell
	}
	return eff
}

// Merge returns the override with delta's set fields written over o,
// leaving o's other fields untouched.
func (o Override) Merge(delta Override) Override {
	if delta.Price != nil {
		o.Price = delta.Price
	}
	if delta.Available != nil {
		o.Available = delta.Available
	}
	if delta.StopSell != nil {
		o.StopSell = delta.StopSell
	}
	return o
}

func (o Override) IsEmpty() bool {
	return o.Price == nil && o.Available == nil && o.StopSell == nil
}

// ClampPrice keeps a computed price non-negative.
func ClampPrice(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// ClampAvailable keeps a computed count inside [0, totalCount].
func ClampAvailable(v, totalCount int) int {
	if v < 0 {
		return 0
	}
	if v > totalCount {
		return totalCount
	}
	return v
}

func PricePtr(v int64) *int64 { return &v }
func CountPtr(v int) *int     { return &v }
func BoolPtr(v bool) *bool    { return &v }
