package scheduler

import (
	"errors"
	"fmt"
	"math"
	"time"

	cron "github.com/netresearch/go-cron"
)

// DefaultWorkingHours fires at the start of every office hour, Monday to Friday.
const DefaultWorkingHours = "0 9-16 * * 1-5"

// MaxHorizon is the number of working hours a calendar projects, about ten
// years of office hours. Later offsets have no wall-clock time.
const MaxHorizon = 20_000

var (
	ErrNoWorkingHours = errors.New("calendar has no working hours")
	ErrBeyondHorizon  = errors.New("offset beyond calendar horizon")
)

// CronExpr wraps a parsed cron schedule.
type CronExpr struct {
	raw      string
	schedule cron.Schedule
}

// ParseCron parses a standard 5-field cron expression.
func ParseCron(expr string) (*CronExpr, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", expr, err)
	}
	return &CronExpr{raw: expr, schedule: schedule}, nil
}

// Next returns the next activation strictly after t.
func (c *CronExpr) Next(t time.Time) time.Time {
	return c.schedule.Next(t)
}

// String returns the raw cron expression.
func (c *CronExpr) String() string {
	return c.raw
}

// Calendar projects hour offsets of a leveled schedule onto wall-clock time.
// Every activation of its cron expression opens one working hour, so the
// expression should fire at most once an hour.
type Calendar struct {
	expr  *CronExpr
	start time.Time
	hours []time.Time
}

// NewCalendar builds a calendar whose first working hour is the first
// activation at or after start.
func NewCalendar(hours string, start time.Time) (*Calendar, error) {
	if hours == "" {
		hours = DefaultWorkingHours
	}
	expr, err := ParseCron(hours)
	if err != nil {
		return nil, err
	}
	c := &Calendar{expr: expr, start: start}
	if c.hour(0).IsZero() {
		return nil, fmt.Errorf("%w: %q", ErrNoWorkingHours, hours)
	}
	return c, nil
}

// hour returns the start of the i-th working hour, computing and caching
// activations as needed. It is zero outside [0, MaxHorizon).
func (c *Calendar) hour(i int) time.Time {
	if i < 0 || i >= MaxHorizon {
		return time.Time{}
	}
	for len(c.hours) <= i {
		from := c.start.Add(-time.Second)
		if n := len(c.hours); n > 0 {
			from = c.hours[n-1]
		}
		next := c.expr.Next(from)
		if next.IsZero() {
			return time.Time{}
		}
		c.hours = append(c.hours, next)
	}
	return c.hours[i]
}

// StartAt returns the wall-clock time at which work at an hour offset
// begins. Offset 0 is the opening of the first working hour; whole offsets
// open the next working hour. The result is zero for NaN, infinite or
// beyond-horizon offsets.
func (c *Calendar) StartAt(offset float64) time.Time {
	if !projectable(offset) {
		return time.Time{}
	}
	if offset <= 0 {
		return c.hour(0)
	}
	whole, frac := math.Modf(offset)
	return c.hour(int(whole)).Add(time.Duration(frac * float64(time.Hour)))
}

// EndAt returns the wall-clock time at which work up to an hour offset
// finishes. Whole offsets close the previous working hour, so a task ending
// at 8 ends when the eighth hour closes rather than when the ninth opens.
func (c *Calendar) EndAt(offset float64) time.Time {
	if !projectable(offset) {
		return time.Time{}
	}
	whole, frac := math.Modf(offset)
	if offset <= 0 || frac != 0 {
		return c.StartAt(offset)
	}
	return c.hour(int(whole) - 1).Add(time.Hour)
}

// Span returns the wall-clock window of a schedule entry, or
// ErrBeyondHorizon when either end cannot be projected.
func (c *Calendar) Span(e Entry) (time.Time, time.Time, error) {
	start := c.StartAt(e.Start)
	end := start
	if e.End > e.Start || math.IsNaN(e.End) {
		end = c.EndAt(e.End)
	}
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: [%v, %v]", ErrBeyondHorizon, e.Start, e.End)
	}
	return start, end, nil
}

func projectable(offset float64) bool {
	return !math.IsNaN(offset) && !math.IsInf(offset, 0) && offset < MaxHorizon
}

// String returns the working-hours expression.
func (c *Calendar) String() string {
	return c.expr.String()
}
