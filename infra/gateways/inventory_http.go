package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/thanhvu/hotelier/domain/calendar"
	"github.com/thanhvu/hotelier/domain/room"
	"github.com/thanhvu/hotelier/infra"
	"github.com/thanhvu/hotelier/protocols"
)

// InventoryGatewayHttp talks to the booking platform's backend API, which
// owns all persistence. Dates cross this boundary as yyyy-MM-dd strings and
// prices as integer VND.
type InventoryGatewayHttp struct {
	httpClient *http.Client
	baseURL    string
}

func NewInventoryGatewayHttp(httpClient *http.Client, baseURL string) *InventoryGatewayHttp {
	return &InventoryGatewayHttp{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

type roomPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	BasePrice  int64  `json:"basePrice"`
	TotalCount int    `json:"totalCount"`
}

type overridePayload struct {
	Date       string `json:"date"`
	Price      *int64 `json:"price,omitempty"`
	Available  *int   `json:"available,omitempty"`
	IsStopSell *bool  `json:"isStopSell,omitempty"`
}

type roomInventoryPayload struct {
	Room      roomPayload       `json:"room"`
	Overrides []overridePayload `json:"overrides"`
}

type hotelInventoryResponse struct {
	Rooms []roomInventoryPayload `json:"rooms"`
}

type bulkUpdateRequest struct {
	Updates []overridePayload `json:"updates"`
}

func (g *InventoryGatewayHttp) GetHotelInventory(ctx context.Context, hotelID string, start, end calendar.Date) ([]protocols.RoomInventory, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	u := fmt.Sprintf("%s/hotels/%s/inventory?start=%s&end=%s",
		g.baseURL, url.PathEscape(hotelID), start.String(), end.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, infra.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()
	if err := statusError(resp.StatusCode, "reading hotel inventory"); err != nil {
		return nil, err
	}

	var body hotelInventoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	inventories := make([]protocols.RoomInventory, 0, len(body.Rooms))
	for _, rp := range body.Rooms {
		inv := protocols.RoomInventory{
			Room: room.Room{
				ID:         rp.Room.ID,
				Name:       rp.Room.Name,
				BasePrice:  rp.Room.BasePrice,
				TotalCount: rp.Room.TotalCount,
			},
			Overrides: make(room.Overrides, len(rp.Overrides)),
		}
		for _, op := range rp.Overrides {
			d, err := calendar.Parse(op.Date)
			if err != nil {
				return nil, fmt.Errorf("malformed override date %q: %w", op.Date, err)
			}
			inv.Overrides[d] = room.Override{
				Price:     op.Price,
				Available: op.Available,
				StopSell:  op.IsStopSell,
			}
		}
		inventories = append(inventories, inv)
	}
	return inventories, nil
}

func (g *InventoryGatewayHttp) BulkUpdateInventory(ctx context.Context, roomID string, updates []protocols.OverrideUpdate) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	payload := bulkUpdateRequest{Updates: make([]overridePayload, 0, len(updates))}
	for _, u := range updates {
		payload.Updates = append(payload.Updates, overridePayload{
			Date:       u.Date.String(),
			Price:      u.Price,
			Available:  u.Available,
			IsStopSell: u.StopSell,
		})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/rooms/%s/inventory/bulk", g.baseURL, url.PathEscape(roomID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBuffer(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return infra.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return infra.NewUnknownRoomError(roomID)
	}
	return statusError(resp.StatusCode, "submitting bulk update")
}

func statusError(status int, action string) error {
	switch {
	case status == http.StatusGatewayTimeout:
		return infra.NewTimeoutError("timeout " + action)
	case status >= 500 && status <= 599:
		return infra.NewNetworkError("network error " + action)
	case status != http.StatusOK:
		return errors.New("failed " + action)
	}
	return nil
}
