package scheduling

import (
	"context"
	"fmt"
	"time"

	"fleetHQ/models"
	"fleetHQ/repository"
)

// ConflictMode selects how two bookings of one drone are compared.
type ConflictMode string

const (
	// ConflictOverlap rejects any intersection of booking windows.
	ConflictOverlap ConflictMode = "overlap"
	// ConflictExact rejects only identical start times.
	ConflictExact ConflictMode = "exact"
)

func (m ConflictMode) Valid() bool {
	return m == ConflictOverlap || m == ConflictExact
}

// Guard detects double bookings.
type Guard struct {
	Duration time.Duration
	Mode     ConflictMode
}

// Conflict returns the first active mission of droneID that collides with a
// booking starting at start, ignoring excludeID. It returns nil when the slot
// is free.
func (g Guard) Conflict(ctx context.Context, missions repository.MissionStore, droneID int64, start time.Time, excludeID int64) (*models.Mission, error) {
	want := BookingWindow(start, g.Duration)
	// nothing starting at or after the window end can collide
	before := want.End
	if g.Mode == ConflictExact {
		before = start.Add(time.Millisecond)
	}
	list, err := missions.Find(ctx, repository.MissionFilter{
		DroneID:   &droneID,
		Statuses:  models.ActiveMissionStatuses,
		Before:    &before,
		ExcludeID: excludeID,
		Sort:      repository.SortDateTimeAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("load bookings of drone %d: %w", droneID, err)
	}
	for i := range list {
		m := &list[i]
		if g.Mode == ConflictExact {
			if m.Schedule.DateTime.Equal(start) {
				return m, nil
			}
			continue
		}
		if BookingWindow(m.Schedule.DateTime, g.Duration).Overlaps(want) {
			return m, nil
		}
	}
	return nil, nil
}

// HasConflict is Conflict reduced to a boolean.
func (g Guard) HasConflict(ctx context.Context, missions repository.MissionStore, droneID int64, start time.Time, excludeID int64) (bool, error) {
	m, err := g.Conflict(ctx, missions, droneID, start, excludeID)
	return m != nil, err
}
