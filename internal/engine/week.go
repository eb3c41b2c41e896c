package engine

import "time"

// WeekWindow is a fixed 7-day span anchored on the Monday of its week. It
// bounds both the visible grid and the date range submitted to batch
// assignment.
type WeekWindow struct {
	monday time.Time
}

// WeekOf normalizes any date to the week window containing it.
func WeekOf(t time.Time) WeekWindow {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return WeekWindow{monday: t.AddDate(0, 0, -offset)}
}

// Start is the inclusive ISO start date (the Monday).
func (w WeekWindow) Start() string {
	return w.monday.Format(time.DateOnly)
}

// End is the inclusive ISO end date (the Sunday).
func (w WeekWindow) End() string {
	return w.monday.AddDate(0, 0, 6).Format(time.DateOnly)
}

// Days lists the seven ISO dates of the window in order.
func (w WeekWindow) Days() []string {
	out := make([]string, 7)
	for i := 0; i < 7; i++ {
		out[i] = w.monday.AddDate(0, 0, i).Format(time.DateOnly)
	}
	return out
}

func (w WeekWindow) Next() WeekWindow {
	return WeekWindow{monday: w.monday.AddDate(0, 0, 7)}
}

func (w WeekWindow) Prev() WeekWindow {
	return WeekWindow{monday: w.monday.AddDate(0, 0, -7)}
}
