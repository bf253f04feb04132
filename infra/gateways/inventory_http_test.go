package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thanhvu/hotelier/domain/calendar"
	"github.com/thanhvu/hotelier/infra"
	"github.com/thanhvu/hotelier/protocols"
)

func TestGetHotelInventory_DecodesRoomsAndOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hotels/h1/inventory" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("start") != "2024-06-17" || r.URL.Query().Get("end") != "2024-06-23" {
			t.Errorf("unexpected range: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"rooms": [{
				"room": {"id": "r1", "name": "Deluxe", "basePrice": 500000, "totalCount": 8},
				"overrides": [
					{"date": "2024-06-18", "price": 650000},
					{"date": "2024-06-19", "available": 2, "isStopSell": true}
				]
			}]
		}`))
	}))
	defer srv.Close()

	g := NewInventoryGatewayHttp(srv.Client(), srv.URL)
	inventories, err := g.GetHotelInventory(context.Background(),
		"h1", calendar.NewDate(2024, time.June, 17), calendar.NewDate(2024, time.June, 23))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(inventories) != 1 {
		t.Fatalf("expected 1 room, got %d", len(inventories))
	}
	inv := inventories[0]
	if inv.Room.ID != "r1" || inv.Room.BasePrice != 500000 || inv.Room.TotalCount != 8 {
		t.Fatalf("room not decoded: %+v", inv.Room)
	}
	ov := inv.Overrides[calendar.NewDate(2024, time.June, 18)]
	if ov.Price == nil || *ov.Price != 650000 {
		t.Fatalf("price override not decoded: %+v", ov)
	}
	if ov.Available != nil || ov.StopSell != nil {
		t.Fatalf("absent fields must stay nil: %+v", ov)
	}
	ov = inv.Overrides[calendar.NewDate(2024, time.June, 19)]
	if ov.Available == nil || *ov.Available != 2 || ov.StopSell == nil || !*ov.StopSell {
		t.Fatalf("second override not decoded: %+v", ov)
	}
}

func TestGetHotelInventory_ServerErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewInventoryGatewayHttp(srv.Client(), srv.URL)
	_, err := g.GetHotelInventory(context.Background(),
		"h1", calendar.NewDate(2024, time.June, 17), calendar.NewDate(2024, time.June, 23))
	if !errors.Is(err, infra.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestBulkUpdateInventory_EncodesOnlySetFields(t *testing.T) {
	var got struct {
		Updates []map[string]any `json:"updates"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rooms/r1/inventory/bulk" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewInventoryGatewayHttp(srv.Client(), srv.URL)
	price := int64(750000)
	err := g.BulkUpdateInventory(context.Background(), "r1", []protocols.OverrideUpdate{
		{Date: calendar.NewDate(2024, time.June, 22), Price: &price},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(got.Updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(got.Updates))
	}
	u := got.Updates[0]
	if u["date"] != "2024-06-22" {
		t.Fatalf("expected wire date 2024-06-22, got %v", u["date"])
	}
	if _, ok := u["available"]; ok {
		t.Fatalf("unset fields must be omitted from the payload: %v", u)
	}
	if _, ok := u["isStopSell"]; ok {
		t.Fatalf("unset fields must be omitted from the payload: %v", u)
	}
}

func TestBulkUpdateInventory_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusGatewayTimeout, infra.ErrTimeout},
		{http.StatusBadGateway, infra.ErrNetwork},
		{http.StatusNotFound, infra.ErrUnknownRoom},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		g := NewInventoryGatewayHttp(srv.Client(), srv.URL)
		err := g.BulkUpdateInventory(context.Background(), "r1", nil)
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		srv.Close()
	}
}

func TestGateway_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewInventoryGatewayHttp(&http.Client{}, "http://localhost:0")
	if _, err := g.GetHotelInventory(ctx, "h1", calendar.Date{}, calendar.Date{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := g.BulkUpdateInventory(ctx, "r1", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
