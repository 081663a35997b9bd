package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fleetHQ/models"
)

type MissionRepository struct {
	db dbtx
}

func NewMissionRepository(db *sql.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

const missionColumns = `id, name, description, owner_id, drone_id, status, survey_area,
	altitude, speed, pattern, overlap, schedule_type, date_time,
	recurrence_frequency, recurrence_interval, recurrence_end, created_at, updated_at`

func scanMission(sc rowScanner) (*models.Mission, error) {
	var (
		m                         models.Mission
		status, area, pattern, st string
		dateTime, created, update int64
		freq                      sql.NullString
		interval, recEnd          sql.NullInt64
	)
	err := sc.Scan(&m.ID, &m.Name, &m.Description, &m.OwnerID, &m.DroneID, &status, &area,
		&m.FlightParameters.Altitude, &m.FlightParameters.Speed, &pattern, &m.FlightParameters.Overlap,
		&st, &dateTime, &freq, &interval, &recEnd, &created, &update)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(area), &m.SurveyArea); err != nil {
		return nil, fmt.Errorf("decode survey area of mission %d: %w", m.ID, err)
	}
	m.Status = models.MissionStatus(status)
	m.FlightParameters.Pattern = models.FlightPattern(pattern)
	m.Schedule.Type = models.ScheduleType(st)
	m.Schedule.DateTime = fromMillis(dateTime)
	if freq.Valid {
		m.Schedule.Recurrence = &models.Recurrence{
			Frequency: models.Frequency(freq.String),
			Interval:  int(interval.Int64),
			EndDate:   fromMillis(recEnd.Int64),
		}
	}
	m.CreatedAt = fromMillis(created)
	m.UpdatedAt = fromMillis(update)
	return &m, nil
}

// recurrenceArgs flattens the optional recurrence into nullable columns.
func recurrenceArgs(r *models.Recurrence) (any, any, any) {
	if r == nil {
		return nil, nil, nil
	}
	return string(r.Frequency), r.Interval, toMillis(r.EndDate)
}

// Create validates and inserts a new mission.
func (r *MissionRepository) Create(ctx context.Context, m *models.Mission) (*models.Mission, error) {
	if m == nil {
		return nil, errors.New("mission is nil")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	area, err := json.Marshal(m.SurveyArea)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	now := nowUTC()
	m.CreatedAt, m.UpdatedAt = now, now
	freq, interval, recEnd := recurrenceArgs(m.Schedule.Recurrence)
	res, err := r.db.ExecContext(ctx, `INSERT INTO missions (name, description, owner_id, drone_id, status, survey_area,
	altitude, speed, pattern, overlap, schedule_type, date_time, recurrence_frequency, recurrence_interval, recurrence_end,
	created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.Name, m.Description, m.OwnerID, m.DroneID, string(m.Status), string(area),
		m.FlightParameters.Altitude, m.FlightParameters.Speed, string(m.FlightParameters.Pattern), m.FlightParameters.Overlap,
		string(m.Schedule.Type), toMillis(m.Schedule.DateTime), freq, interval, recEnd, toMillis(now), toMillis(now))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

func (r *MissionRepository) GetByID(ctx context.Context, id int64) (*models.Mission, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	m, err := scanMission(r.db.QueryRowContext(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Update validates and writes every mutable field of m.
func (r *MissionRepository) Update(ctx context.Context, m *models.Mission) error {
	if m == nil {
		return errors.New("mission is nil")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	area, err := json.Marshal(m.SurveyArea)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	m.UpdatedAt = nowUTC()
	freq, interval, recEnd := recurrenceArgs(m.Schedule.Recurrence)
	res, err := r.db.ExecContext(ctx, `UPDATE missions SET name = ?, description = ?, drone_id = ?, status = ?, survey_area = ?,
	altitude = ?, speed = ?, pattern = ?, overlap = ?, schedule_type = ?, date_time = ?, recurrence_frequency = ?,
	recurrence_interval = ?, recurrence_end = ?, updated_at = ? WHERE id = ?`,
		m.Name, m.Description, m.DroneID, string(m.Status), string(area),
		m.FlightParameters.Altitude, m.FlightParameters.Speed, string(m.FlightParameters.Pattern), m.FlightParameters.Overlap,
		string(m.Schedule.Type), toMillis(m.Schedule.DateTime), freq, interval, recEnd, toMillis(m.UpdatedAt), m.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, "mission", m.ID)
}

func (r *MissionRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM missions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "mission", id)
}
