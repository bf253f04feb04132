package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/thanhvu/hotelier/domain/calendar"
	"github.com/thanhvu/hotelier/infra"
	"github.com/thanhvu/hotelier/infra/config"
	"github.com/thanhvu/hotelier/infra/gateways"
	"github.com/thanhvu/hotelier/infra/logging"
	"github.com/thanhvu/hotelier/infra/metrics"
	"github.com/thanhvu/hotelier/infra/requestid"
	"github.com/thanhvu/hotelier/infra/tracing"
	"github.com/thanhvu/hotelier/protocols"
	"github.com/thanhvu/hotelier/use_cases/bulkupdate"
	"github.com/thanhvu/hotelier/use_cases/resolve"
)

type BulkUpdateRequest struct {
	HotelID   string          `json:"hotelId" validate:"required"`
	Operation string          `json:"operation" validate:"required,oneof=price availability stopSell"`
	PriceMode string          `json:"priceMode" validate:"omitempty,oneof=percent fixed"`
	Value     decimal.Decimal `json:"value"`
	Available int             `json:"available"`
	StopSell  bool            `json:"stopSell"`
	Pattern   string          `json:"pattern" validate:"required,oneof=all weekdays weekends custom"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	RoomIDs   []string        `json:"roomIds" validate:"required,min=1,dive,required"`
}

type RoomResult struct {
	RoomID  string `json:"roomId"`
	Updates int    `json:"updates"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type BulkUpdateResponse struct {
	Replayed  bool         `json:"replayed"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []RoomResult `json:"results"`
}

type DayResponse struct {
	Date      string `json:"date"`
	Price     int64  `json:"price"`
	Available int    `json:"available"`
	StopSell  bool   `json:"stopSell"`
}

type RoomCalendarResponse struct {
	RoomID string        `json:"roomId"`
	Name   string        `json:"name"`
	Days   []DayResponse `json:"days"`
}

func StartServer() {
	cfg := config.Load()
	logger, closeLogger := logging.Setup(cfg.LogLevel, cfg.LokiURL, cfg.ServiceName)
	defer closeLogger()

	if shutdown := tracing.Init(cfg.ServiceName, cfg.OTLPEndpoint); shutdown != nil {
		defer shutdown()
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second}
	inventoryGateway := gateways.NewInventoryGatewayHttp(httpClient, cfg.BackendBaseURL)

	var bulkGateway protocols.BulkGateway
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Warn("redis ping failed, using in-memory idempotency")
			bulkGateway = gateways.NewBulkGatewayMemory()
		} else {
			bulkGateway = gateways.NewBulkGatewayRedis(rdb)
			logger.Info("bulk idempotency: redis (TTL 24h)")
		}
	} else {
		bulkGateway = gateways.NewBulkGatewayMemory()
		logger.Info("bulk idempotency: in-memory (set REDIS_ADDR for redis)")
	}

	clock := gateways.NewSystemClock()
	sleeper := gateways.NewSleeper()
	bulkUseCase := bulkupdate.NewBulkUpdate(inventoryGateway, bulkGateway, clock, sleeper, cfg.BulkWorkers)
	resolveUseCase := resolve.NewResolve(inventoryGateway, clock)

	validate := validator.New()

	r := gin.New()
	r.Use(gin.Recovery(), requestid.Middleware, metrics.Middleware, tracing.Middleware())

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		redisCheck := "n/a"
		if rdb != nil {
			if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
				status = "degraded"
				redisCheck = "down"
			} else {
				redisCheck = "up"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "checks": gin.H{"redis": redisCheck}})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/hotels/:hotelId/inventory", func(c *gin.Context) {
		input := resolve.Input{HotelID: c.Param("hotelId")}
		var err error
		if s := c.Query("start"); s != "" {
			if input.Start, err = calendar.Parse(s); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "start must be yyyy-MM-dd"})
				return
			}
		}
		if s := c.Query("end"); s != "" {
			if input.End, err = calendar.Parse(s); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "end must be yyyy-MM-dd"})
				return
			}
		}

		out, err := resolveUseCase.Resolve(c.Request.Context(), input)
		if err != nil {
			writeError(c, logger, "resolve", err)
			return
		}

		rooms := make([]RoomCalendarResponse, 0, len(out.Rooms))
		for _, rc := range out.Rooms {
			roomResp := RoomCalendarResponse{RoomID: rc.RoomID, Name: rc.Name, Days: make([]DayResponse, 0, len(rc.Days))}
			for _, d := range rc.Days {
				roomResp.Days = append(roomResp.Days, DayResponse{
					Date:      d.Date.String(),
					Price:     d.Price,
					Available: d.Available,
					StopSell:  d.StopSell,
				})
			}
			rooms = append(rooms, roomResp)
		}
		c.JSON(http.StatusOK, gin.H{"rooms": rooms})
	})

	r.POST("/inventory/bulk-update", func(c *gin.Context) {
		var req BulkUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		input, err := toInput(req, c.GetHeader("Idempotency-Key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		start := time.Now()
		out, err := bulkUseCase.Apply(c.Request.Context(), input)
		if err != nil {
			writeError(c, logger, "bulk-update", err)
			return
		}

		succeeded, failed := out.Succeeded(), out.Failed()
		metrics.ObserveBulkOutcome(len(succeeded), len(failed), time.Since(start))
		logging.WithOperation(logger, "inventory", "bulk-update").WithFields(logrus.Fields{
			"requestId": requestid.FromContext(c.Request.Context()),
			"hotelId":   input.HotelID,
			"succeeded": len(succeeded),
			"failed":    len(failed),
			"replayed":  out.Replayed,
		}).Info("bulk update finished")

		resp := BulkUpdateResponse{
			Replayed:  out.Replayed,
			Succeeded: len(succeeded),
			Failed:    len(failed),
			Results:   make([]RoomResult, 0, len(out.Outcomes)),
		}
		for _, o := range out.Outcomes {
			result := RoomResult{RoomID: o.RoomID, Updates: o.Updates, Status: "ok"}
			if o.Err != nil {
				result.Status = "failed"
				result.Error = o.Err.Error()
			}
			resp.Results = append(resp.Results, result)
		}
		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusMultiStatus
		}
		c.JSON(status, resp)
	})

	logger.WithField("addr", cfg.ListenAddr).Info("inventory service listening")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.WithError(err).Fatal("http server stopped")
	}
}

func toInput(req BulkUpdateRequest, idempotencyKey string) (bulkupdate.Input, error) {
	input := bulkupdate.Input{
		HotelID:        req.HotelID,
		IdempotencyKey: idempotencyKey,
		Op:             bulkupdate.Operation(req.Operation),
		PriceMode:      bulkupdate.PriceMode(req.PriceMode),
		PriceValue:     req.Value,
		Available:      req.Available,
		StopSell:       req.StopSell,
		Pattern:        calendar.Pattern(req.Pattern),
		RoomIDs:        req.RoomIDs,
	}
	var err error
	if req.Start != "" {
		if input.Start, err = calendar.Parse(req.Start); err != nil {
			return bulkupdate.Input{}, errors.New("start must be yyyy-MM-dd")
		}
	}
	if req.End != "" {
		if input.End, err = calendar.Parse(req.End); err != nil {
			return bulkupdate.Input{}, errors.New("end must be yyyy-MM-dd")
		}
	}
	return input, nil
}

func writeError(c *gin.Context, logger *logrus.Logger, operation string, err error) {
	logging.WithOperation(logger, "inventory", operation).WithFields(logrus.Fields{
		"requestId": requestid.FromContext(c.Request.Context()),
	}).WithError(err).Error("request failed")

	switch {
	case errors.Is(err, infra.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, infra.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, infra.ErrNetwork):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
