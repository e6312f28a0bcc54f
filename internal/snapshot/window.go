package snapshot

import (
	"fmt"
	"time"
)

// Window is a half-open [Start, End) date range requested from the api.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s -> %s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// MonthWindows splits [start, end) on calendar month boundaries, the first
// and last windows are clipped to start and end.
func MonthWindows(start, end time.Time) []Window {
	var windows []Window
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	for cur.Before(end) {
		next := cur.AddDate(0, 1, 0)

		w := Window{Start: cur, End: next}
		if w.Start.Before(start) {
			w.Start = start
		}
		if w.End.After(end) {
			w.End = end
		}
		if w.Start.Before(w.End) {
			windows = append(windows, w)
		}
		cur = next
	}
	return windows
}
