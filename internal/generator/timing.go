package generator

import (
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// BaseTime is the start of the first boot session.
var BaseTime = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

const (
	bootLogStep     = 2.5
	moduleEventStep = 10
	driverInitStep  = 20
)

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// SessionStart returns the epoch second at which session (1-based) begins.
func (p Params) SessionStart(session int) float64 {
	return epochSeconds(BaseTime) + float64(session-1)*p.SessionSpacing
}

// fixedTimes spaces count timestamps step seconds apart, shrinking the step so the
// last one stays inside the session.
func (p Params) fixedTimes(session, count int, step float64) []float64 {
	if count > 0 && float64(count)*step > p.SessionSpacing {
		step = p.SessionSpacing / float64(count)
	}
	start := p.SessionStart(session)
	times := make([]float64, count)
	for i := range times {
		times[i] = start + float64(i)*step
	}
	return times
}

// randomTimes draws count sorted timestamps uniformly over the session.
func (p Params) randomTimes(f *gofakeit.Faker, session, count int) []float64 {
	start := p.SessionStart(session)
	times := make([]float64, count)
	for i := range times {
		times[i] = start + f.Float64Range(0, p.SessionSpacing)
	}
	sort.Float64s(times)
	return times
}
