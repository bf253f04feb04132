package protocols

import "github.com/thanhvu/hotelier/domain/calendar"

// Clock abstracts wall-clock "today" so date windows are deterministic in
// tests.
type Clock interface {
	Today() calendar.Date
}
