package scheduling

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fleetHQ/internal/apperr"
	"fleetHQ/internal/auth"
	"fleetHQ/internal/events"
	"fleetHQ/models"
	"fleetHQ/repository"
)

// CreateDrone registers a drone owned by the caller.
func (s *Service) CreateDrone(ctx context.Context, caller auth.Caller, in CreateDroneInput) (*models.Drone, error) {
	if in.Status == models.DroneStatusInMission {
		return nil, apperr.InvalidState("a new drone cannot start in-mission")
	}
	now := s.now().UTC()
	d := &models.Drone{
		SerialNumber:    strings.TrimSpace(in.SerialNumber),
		Name:            in.Name,
		Model:           in.Model,
		Status:          in.Status,
		BatteryLevel:    models.DefaultBatteryLevel,
		MaxFlightTime:   in.MaxFlightTime,
		HealthStatus:    in.HealthStatus,
		LastMaintenance: in.LastMaintenance,
		OwnerID:         caller.UserID,
	}
	if in.BatteryLevel != nil {
		d.BatteryLevel = *in.BatteryLevel
	}
	if in.Location != nil {
		d.Location = *in.Location
	}
	d.ApplyDefaults(now)
	if err := d.Validate(); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Drones().GetBySerial(ctx, d.SerialNumber)
		if err != nil {
			return fmt.Errorf("check serial: %w", err)
		}
		if existing != nil {
			return apperr.DuplicateKey("drone with serial number %q already exists", d.SerialNumber)
		}
		d, err = tx.Drones().Create(ctx, d)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("drone %d (%s) registered by user %d", d.ID, d.SerialNumber, caller.UserID)
	return d, nil
}

// ListDrones returns the drones visible to the caller, newest first.
func (s *Service) ListDrones(ctx context.Context, caller auth.Caller) ([]models.Drone, error) {
	return s.store.Drones().Find(ctx, repository.DroneFilter{OwnerID: auth.ScopeOwner(caller)})
}

// ListAvailableDrones returns the caller's available drones free in [start, end).
func (s *Service) ListAvailableDrones(ctx context.Context, caller auth.Caller, start, end *time.Time) ([]models.Drone, error) {
	return s.resolver.AvailableDrones(ctx, s.store, caller, start, end)
}

// GetDrone returns one drone the caller may see.
func (s *Service) GetDrone(ctx context.Context, caller auth.Caller, id int64) (*models.Drone, error) {
	return loadDrone(ctx, s.store, caller, id)
}

func loadDrone(ctx context.Context, store repository.Store, caller auth.Caller, id int64) (*models.Drone, error) {
	d, err := store.Drones().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get drone %d: %w", id, err)
	}
	if d == nil {
		return nil, apperr.NotFound("drone %d not found", id)
	}
	if err := auth.Authorize(caller, d.OwnerID); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDrone applies a patch. The in-mission status belongs to the mission
// lifecycle and cannot be set or cleared here.
func (s *Service) UpdateDrone(ctx context.Context, caller auth.Caller, id int64, p DronePatch) (*models.Drone, error) {
	var (
		out *models.Drone
		evs []events.Event
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		d, err := loadDrone(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		if p.Status != nil && *p.Status != d.Status {
			if *p.Status == models.DroneStatusInMission {
				return apperr.InvalidState("drones enter in-mission only when a mission starts")
			}
			if d.Status == models.DroneStatusInMission {
				return apperr.InvalidState("drone %d is flying a mission; finish or abort it first", d.ID)
			}
		}
		if p.SerialNumber != nil {
			serial := strings.TrimSpace(*p.SerialNumber)
			if serial != d.SerialNumber {
				other, err := tx.Drones().GetBySerial(ctx, serial)
				if err != nil {
					return fmt.Errorf("check serial: %w", err)
				}
				if other != nil {
					return apperr.DuplicateKey("drone with serial number %q already exists", serial)
				}
				d.SerialNumber = serial
			}
		}
		from := d.Status
		applyDronePatch(d, p, s.now().UTC())
		if err := tx.Drones().Update(ctx, d); err != nil {
			return err
		}
		if d.Status != from {
			evs = append(evs, events.Event{Type: events.DroneStatusChanged, DroneID: d.ID, OwnerID: d.OwnerID,
				From: string(from), To: string(d.Status), At: d.UpdatedAt})
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(evs)
	return out, nil
}

func applyDronePatch(d *models.Drone, p DronePatch, now time.Time) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Model != nil {
		d.Model = *p.Model
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.BatteryLevel != nil {
		d.BatteryLevel = *p.BatteryLevel
	}
	if p.MaxFlightTime != nil {
		d.MaxFlightTime = *p.MaxFlightTime
	}
	if p.Location != nil {
		d.Location = *p.Location
		if d.Location.LastUpdated.IsZero() {
			d.Location.LastUpdated = now
		}
	}
	if p.HealthStatus != nil {
		d.HealthStatus = *p.HealthStatus
	}
	if p.LastMaintenance != nil {
		t := *p.LastMaintenance
		d.LastMaintenance = &t
	}
}

// DeleteDrone removes a drone that no scheduled or in-progress mission uses.
func (s *Service) DeleteDrone(ctx context.Context, caller auth.Caller, id int64) error {
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		d, err := loadDrone(ctx, tx, caller, id)
		if err != nil {
			return err
		}
		active, err := tx.Missions().Find(ctx, repository.MissionFilter{DroneID: &d.ID, Statuses: models.ActiveMissionStatuses})
		if err != nil {
			return fmt.Errorf("check missions of drone %d: %w", d.ID, err)
		}
		if len(active) > 0 {
			return apperr.HasActiveMissions("drone %d has %d scheduled or in-progress missions", d.ID, len(active))
		}
		return tx.Drones().Delete(ctx, d.ID)
	})
	if err != nil {
		return err
	}
	log.Printf("drone %d deleted by user %d", id, caller.UserID)
	return nil
}
