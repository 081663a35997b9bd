package scheduling

import (
	"context"
	"fmt"
	"time"

	"fleetHQ/internal/apperr"
	"fleetHQ/internal/auth"
	"fleetHQ/models"
	"fleetHQ/repository"
)

// Resolver answers "which of my drones are free in this window". It takes no
// locks; the guard at booking time is what prevents double bookings.
type Resolver struct {
	Duration time.Duration
}

// AvailableDrones returns the caller-visible drones with status available
// that no active mission books during [start, end). Without end the time
// filter is skipped and every available drone is returned.
func (r Resolver) AvailableDrones(ctx context.Context, store repository.Store, caller auth.Caller, start, end *time.Time) ([]models.Drone, error) {
	if start == nil || start.IsZero() {
		return nil, apperr.InvalidRequest("startDateTime is required")
	}
	if end != nil && !end.After(*start) {
		return nil, apperr.InvalidRequest("endDateTime must be after startDateTime")
	}
	drones, err := store.Drones().Find(ctx, repository.DroneFilter{
		OwnerID:  auth.ScopeOwner(caller),
		Statuses: []models.DroneStatus{models.DroneStatusAvailable},
	})
	if err != nil {
		return nil, fmt.Errorf("load drones: %w", err)
	}
	if end == nil || len(drones) == 0 {
		return drones, nil
	}

	// every owner's missions count: a drone is booked no matter who booked it
	missions, err := store.Missions().Find(ctx, repository.MissionFilter{
		Statuses: models.ActiveMissionStatuses,
		Before:   end,
	})
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	booked := make(map[int64]struct{}, len(missions))
	for _, m := range missions {
		if m.Schedule.DateTime.Add(r.Duration).After(*start) {
			booked[m.DroneID] = struct{}{}
		}
	}
	out := drones[:0]
	for _, d := range drones {
		if _, ok := booked[d.ID]; !ok {
			out = append(out, d)
		}
	}
	return out, nil
}
