package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetHQ/internal/apperr"
	"fleetHQ/models"
)

func newMission(owner, drone int64, at time.Time) *models.Mission {
	m := &models.Mission{
		Name:    "survey",
		OwnerID: owner,
		DroneID: drone,
		Status:  models.MissionStatusScheduled,
		SurveyArea: []models.Coordinate{
			{Latitude: 10, Longitude: 10}, {Latitude: 10, Longitude: 10.01}, {Latitude: 10.01, Longitude: 10.01},
		},
		FlightParameters: models.FlightParameters{Altitude: 120, Speed: 8, Overlap: 70},
		Schedule:         models.Schedule{DateTime: at},
	}
	m.ApplyDefaults()
	return m
}

func TestMissionRepository_CRUDAndFind(t *testing.T) {
	s := openStore(t, "missionrepo")
	ctx := context.Background()
	u, _ := s.Users().Create(ctx, "pilot", models.RoleOperator)
	v, _ := s.Users().Create(ctx, "viewer", models.RoleOperator)
	d1, _ := s.Drones().Create(ctx, newDrone(u.ID, "M-1"))
	d2, _ := s.Drones().Create(ctx, newDrone(v.ID, "M-2"))

	t0 := time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC)
	m1, err := s.Missions().Create(ctx, newMission(u.ID, d1.ID, t0.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec := newMission(u.ID, d1.ID, t0)
	rec.Schedule.Type = models.ScheduleRecurring
	rec.Schedule.Recurrence = &models.Recurrence{Frequency: models.FrequencyWeekly, Interval: 2, EndDate: t0.AddDate(0, 2, 0)}
	m2, err := s.Missions().Create(ctx, rec)
	if err != nil {
		t.Fatalf("create recurring: %v", err)
	}
	m3, _ := s.Missions().Create(ctx, newMission(v.ID, d2.ID, t0.Add(time.Hour)))

	got, err := s.Missions().GetByID(ctx, m2.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v %+v", err, got)
	}
	if got.Schedule.Recurrence == nil || got.Schedule.Recurrence.Interval != 2 || !got.Schedule.Recurrence.EndDate.Equal(t0.AddDate(0, 2, 0)) {
		t.Fatalf("recurrence not round-tripped: %+v", got.Schedule)
	}
	if len(got.SurveyArea) != 4 || !got.Schedule.DateTime.Equal(t0) {
		t.Fatalf("mission fields not round-tripped: %+v", got)
	}
	if missing, err := s.Missions().GetByID(ctx, 4242); err != nil || missing != nil {
		t.Fatalf("expected nil,nil: %v %+v", err, missing)
	}

	drone := d1.ID
	byDrone, _ := s.Missions().Find(ctx, MissionFilter{DroneID: &drone, Sort: SortDateTimeAsc})
	if len(byDrone) != 2 || byDrone[0].ID != m2.ID || byDrone[1].ID != m1.ID {
		t.Fatalf("find by drone in schedule order: %+v", byDrone)
	}
	excl, _ := s.Missions().Find(ctx, MissionFilter{DroneID: &drone, ExcludeID: m2.ID})
	if len(excl) != 1 || excl[0].ID != m1.ID {
		t.Fatalf("exclude: %+v", excl)
	}
	before := t0.Add(90 * time.Minute)
	early, _ := s.Missions().Find(ctx, MissionFilter{Before: &before, Statuses: models.ActiveMissionStatuses})
	if len(early) != 2 {
		t.Fatalf("before filter: %+v", early)
	}
	owner := v.ID
	theirs, _ := s.Missions().Find(ctx, MissionFilter{OwnerID: &owner})
	if len(theirs) != 1 || theirs[0].ID != m3.ID {
		t.Fatalf("owner filter: %+v", theirs)
	}
	all, _ := s.Missions().Find(ctx, MissionFilter{})
	if len(all) != 3 || all[0].ID != m3.ID {
		t.Fatalf("expected newest first: %+v", all)
	}

	m1.Description = "north field"
	m1.Status = models.MissionStatusInProgress
	if err := s.Missions().Update(ctx, m1); err != nil {
		t.Fatalf("update: %v", err)
	}
	re, _ := s.Missions().GetByID(ctx, m1.ID)
	if re.Description != "north field" || re.Status != models.MissionStatusInProgress {
		t.Fatalf("update not persisted: %+v", re)
	}
	m1.FlightParameters.Speed = 50
	if err := s.Missions().Update(ctx, m1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := s.Missions().Delete(ctx, m3.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Missions().Delete(ctx, m3.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
