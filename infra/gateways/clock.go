package gateways

import (
	"time"

	"github.com/thanhvu/hotelier/domain/calendar"
)

type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Today() calendar.Date {
	return calendar.FromTime(time.Now())
}
