package scheduling

import (
	"context"
	"fmt"
	"log"

	"fleetHQ/internal/geo"
	"fleetHQ/models"
	"fleetHQ/repository"
)

// views joins missions with their drone and owner. Lookups are cached per
// call since listings usually repeat the same few drones.
func (s *Service) views(ctx context.Context, store repository.Store, list []models.Mission) ([]models.MissionView, error) {
	drones := map[int64]*models.DroneSummary{}
	owners := map[int64]*models.UserSummary{}
	out := make([]models.MissionView, 0, len(list))
	for _, m := range list {
		v := models.MissionView{Mission: m}

		ds, ok := drones[m.DroneID]
		if !ok {
			d, err := store.Drones().GetByID(ctx, m.DroneID)
			if err != nil {
				return nil, fmt.Errorf("join drone %d: %w", m.DroneID, err)
			}
			if d != nil {
				ds = &models.DroneSummary{ID: d.ID, Name: d.Name, Model: d.Model, SerialNumber: d.SerialNumber}
			}
			drones[m.DroneID] = ds
		}
		v.Drone = ds

		us, ok := owners[m.OwnerID]
		if !ok {
			u, err := store.Users().GetByID(ctx, m.OwnerID)
			if err != nil {
				return nil, fmt.Errorf("join owner %d: %w", m.OwnerID, err)
			}
			if u != nil {
				us = &models.UserSummary{ID: u.ID, Username: u.Username}
			}
			owners[m.OwnerID] = us
		}
		v.Owner = us

		if metrics, err := geo.MeasureSurveyArea(m.SurveyArea); err == nil {
			v.SurveyAreaM2 = metrics.AreaM2
			v.SurveyPerimeterM = metrics.PerimeterM
		} else {
			log.Printf("mission %d: measure survey area: %v", m.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) view(ctx context.Context, store repository.Store, m *models.Mission) (*models.MissionView, error) {
	vs, err := s.views(ctx, store, []models.Mission{*m})
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}
