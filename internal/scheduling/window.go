// Package scheduling implements drone availability, booking conflict
// detection and the mission lifecycle on top of a repository.Store.
package scheduling

import "time"

// DefaultMissionDuration is the booking length assumed for every mission.
const DefaultMissionDuration = time.Hour

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// BookingWindow returns the window a mission starting at start occupies.
func BookingWindow(start time.Time, d time.Duration) Window {
	return Window{Start: start, End: start.Add(d)}
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}
