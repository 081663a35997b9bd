package scheduling

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleetHQ/internal/apperr"
	"fleetHQ/internal/auth"
	"fleetHQ/internal/events"
	"fleetHQ/models"
	"fleetHQ/repository"
)

// CreateMission books a drone for a new mission. The mission starts scheduled.
func (s *Service) CreateMission(ctx context.Context, caller auth.Caller, in CreateMissionInput) (*models.MissionView, error) {
	if in.DroneID == 0 {
		return nil, apperr.InvalidRequest("drone is required")
	}
	var created *models.Mission
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		d, err := s.bookableDrone(ctx, tx, caller, in.DroneID)
		if err != nil {
			return err
		}
		m := &models.Mission{
			Name:             in.Name,
			Description:      in.Description,
			OwnerID:          caller.UserID,
			DroneID:          d.ID,
			Status:           models.MissionStatusScheduled,
			SurveyArea:       append([]models.Coordinate(nil), in.SurveyArea...),
			FlightParameters: in.FlightParameters.model(),
			Schedule:         copySchedule(in.Schedule),
		}
		m.ApplyDefaults()
		if err := m.Validate(); err != nil {
			return err
		}
		if err := s.checkSlot(ctx, tx, d.ID, m.Schedule.DateTime, 0); err != nil {
			return err
		}
		created, err = tx.Missions().Create(ctx, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("mission %d scheduled on drone %d at %s by user %d", created.ID, created.DroneID,
		created.Schedule.DateTime.Format(time.RFC3339), caller.UserID)
	return s.view(ctx, s.store, created)
}

// ListMissions returns the caller-visible missions joined with drone and owner.
func (s *Service) ListMissions(ctx context.Context, caller auth.Caller) ([]models.MissionView, error) {
	list, err := s.store.Missions().Find(ctx, repository.MissionFilter{OwnerID: auth.ScopeOwner(caller)})
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return s.views(ctx, s.store, list)
}

// GetMission returns one mission the caller may see.
func (s *Service) GetMission(ctx context.Context, caller auth.Caller, id int64) (*models.MissionView, error) {
	m, err := loadMission(ctx, s.store, caller, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, s.store, m)
}

func loadMission(ctx context.Context, store repository.Store, caller auth.Caller, id int64) (*models.Mission, error) {
	m, err := store.Missions().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get mission %d: %w", id, err)
	}
	if m == nil {
		return nil, apperr.NotFound("mission %d not found", id)
	}
	if err := auth.Authorize(caller, m.OwnerID); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMission applies a patch under the lifecycle rules and cascades the
// drone status in the same transaction.
func (s *Service) UpdateMission(ctx context.Context, caller auth.Caller, id int64, p MissionPatch) (*models.MissionView, error) {
	var (
		out *models.Mission
		evs []events.Event
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		m, err := loadMission(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if err := checkEdit(m.Status, p); err != nil {
			return err
		}
		if unchanged(m, p) {
			out = m
			return nil
		}
		from, to := m.Status, m.Status
		if p.Status != nil {
			to = *p.Status
		}

		next := *m
		next.Schedule = copySchedule(m.Schedule)
		applyMissionPatch(&next, p)
		next.Status = to
		next.ApplyDefaults()

		droneChanged := next.DroneID != m.DroneID
		activated := to.Active() && !from.Active()
		if droneChanged {
			if _, err := s.bookableDrone(ctx, tx, caller, next.DroneID); err != nil {
				return err
			}
		} else if activated {
			// the drone may have been deleted while the mission was a draft
			d, err := tx.Drones().GetByID(ctx, next.DroneID)
			if err != nil {
				return fmt.Errorf("get drone %d: %w", next.DroneID, err)
			}
			if d == nil {
				return apperr.NotFound("drone %d not found; assign another drone", next.DroneID)
			}
		}
		if err := next.Validate(); err != nil {
			return err
		}
		rescheduled := !next.Schedule.DateTime.Equal(m.Schedule.DateTime)
		if droneChanged || (to.Active() && (rescheduled || activated)) {
			if err := s.checkSlot(ctx, tx, next.DroneID, next.Schedule.DateTime, m.ID); err != nil {
				return err
			}
		}

		if cascade := DroneCascade(from, to); cascade != "" {
			ev, err := s.cascadeDrone(ctx, tx, next.DroneID, cascade)
			if err != nil {
				return err
			}
			evs = append(evs, ev)
		}
		if err := tx.Missions().Update(ctx, &next); err != nil {
			return err
		}
		if from != to {
			log.Printf("mission %d: %s -> %s", next.ID, from, to)
			evs = append(evs, events.Event{Type: events.MissionStatusChanged, MissionID: next.ID, DroneID: next.DroneID,
				OwnerID: next.OwnerID, From: string(from), To: string(to), At: next.UpdatedAt})
		}
		out = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(evs)
	return s.view(ctx, s.store, out)
}

// unchanged reports whether p only restates the mission's current status.
func unchanged(m *models.Mission, p MissionPatch) bool {
	switch p.FieldCount() {
	case 0:
		return true
	case 1:
		return p.Status != nil && *p.Status == m.Status
	}
	return false
}

// cascadeDrone moves the mission's drone to status. Starting a mission needs
// an available drone, which keeps one in-progress mission per drone.
func (s *Service) cascadeDrone(ctx context.Context, tx repository.Store, droneID int64, status models.DroneStatus) (events.Event, error) {
	d, err := tx.Drones().GetByID(ctx, droneID)
	if err != nil {
		return events.Event{}, fmt.Errorf("get drone %d: %w", droneID, err)
	}
	if d == nil {
		return events.Event{}, apperr.NotFound("drone %d not found", droneID)
	}
	if status == models.DroneStatusInMission && d.Status != models.DroneStatusAvailable {
		return events.Event{}, apperr.Unavailable("drone %d is %s", d.ID, d.Status)
	}
	if err := tx.Drones().UpdateStatus(ctx, d.ID, status); err != nil {
		return events.Event{}, err
	}
	log.Printf("drone %d: %s -> %s", d.ID, d.Status, status)
	return events.Event{Type: events.DroneStatusChanged, DroneID: d.ID, OwnerID: d.OwnerID,
		From: string(d.Status), To: string(status), At: s.now().UTC()}, nil
}

// DeleteMission removes a mission that is not in progress. The drone is untouched.
func (s *Service) DeleteMission(ctx context.Context, caller auth.Caller, id int64) error {
	var ev events.Event
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		m, err := loadMission(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if m.Status == models.MissionStatusInProgress {
			return apperr.InvalidState("mission %d is in progress; complete or abort it first", m.ID)
		}
		ev = events.Event{Type: events.MissionDeleted, MissionID: m.ID, DroneID: m.DroneID, OwnerID: m.OwnerID,
			From: string(m.Status), At: s.now().UTC()}
		return tx.Missions().Delete(ctx, m.ID)
	})
	if err != nil {
		return err
	}
	s.publish([]events.Event{ev})
	log.Printf("mission %d deleted by user %d", id, caller.UserID)
	return nil
}

// bookableDrone loads a drone the caller may book and checks it is available.
func (s *Service) bookableDrone(ctx context.Context, tx repository.Store, caller auth.Caller, id int64) (*models.Drone, error) {
	d, err := loadDrone(ctx, tx, caller, id)
	if err != nil {
		return nil, err
	}
	if d.Status != models.DroneStatusAvailable {
		return nil, apperr.Unavailable("drone %d is %s", d.ID, d.Status)
	}
	return d, nil
}

func (s *Service) checkSlot(ctx context.Context, tx repository.Store, droneID int64, start time.Time, excludeID int64) error {
	c, err := s.guard.Conflict(ctx, tx.Missions(), droneID, start, excludeID)
	if err != nil {
		return err
	}
	if c != nil {
		return apperr.Conflict("drone %d is already booked by mission %d at %s", droneID, c.ID,
			c.Schedule.DateTime.Format(time.RFC3339))
	}
	return nil
}

func applyMissionPatch(m *models.Mission, p MissionPatch) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.DroneID != nil {
		m.DroneID = *p.DroneID
	}
	if p.SurveyArea != nil {
		m.SurveyArea = append([]models.Coordinate(nil), p.SurveyArea...)
	}
	if p.FlightParameters != nil {
		m.FlightParameters = p.FlightParameters.model()
	}
	if p.Schedule != nil {
		m.Schedule = copySchedule(*p.Schedule)
	}
}

func copySchedule(s models.Schedule) models.Schedule {
	if s.Recurrence != nil {
		r := *s.Recurrence
		s.Recurrence = &r
	}
	return s
}
