package domain

import (
	"fmt"
	"time"
)

// DefaultTimezone is the zone the clock widget renders in.
const DefaultTimezone = "Asia/Seoul"

var koreanWeekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// ClockView is the rendered clock widget.
type ClockView struct {
	Time     string    `json:"time"`
	Date     string    `json:"date"`
	Timezone string    `json:"timezone"`
	Now      time.Time `json:"now"`
}

// Clock formats instants in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock for the given location. A nil location means UTC.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{loc: loc, now: time.Now}
}

// LoadClock resolves a timezone name and returns a clock for it.
func LoadClock(name string) (Clock, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Clock{}, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return NewClock(loc), nil
}

// Now renders the current time.
func (c Clock) Now() ClockView {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	return c.Format(now())
}

// Format renders t as a 24-hour time and a Korean long date.
func (c Clock) Format(t time.Time) ClockView {
	loc := c.loc
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return ClockView{
		Time:     t.Format("15:04"),
		Date:     fmt.Sprintf("%d년 %d월 %d일 %s", t.Year(), int(t.Month()), t.Day(), koreanWeekdays[t.Weekday()]),
		Timezone: loc.String(),
		Now:      t,
	}
}
