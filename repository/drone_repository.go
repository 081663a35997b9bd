package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"fleetHQ/internal/apperr"
	"fleetHQ/models"
)

type DroneRepository struct {
	db dbtx
}

func NewDroneRepository(db *sql.DB) *DroneRepository {
	return &DroneRepository{db: db}
}

const droneColumns = `id, serial_number, name, model, status, battery_level, max_flight_time,
	lat, lng, altitude, location_name, location_updated_at, health_status, last_maintenance,
	owner_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDrone(sc rowScanner) (*models.Drone, error) {
	var (
		d                           models.Drone
		status, health              string
		locUpdated, created, update int64
		lastMaint                   sql.NullInt64
	)
	err := sc.Scan(&d.ID, &d.SerialNumber, &d.Name, &d.Model, &status, &d.BatteryLevel, &d.MaxFlightTime,
		&d.Location.Latitude, &d.Location.Longitude, &d.Location.Altitude, &d.Location.Name, &locUpdated,
		&health, &lastMaint, &d.OwnerID, &created, &update)
	if err != nil {
		return nil, err
	}
	d.Status = models.DroneStatus(status)
	d.HealthStatus = models.HealthStatus(health)
	d.Location.LastUpdated = fromMillis(locUpdated)
	d.LastMaintenance = timePtr(lastMaint)
	d.CreatedAt = fromMillis(created)
	d.UpdatedAt = fromMillis(update)
	return &d, nil
}

// Create validates and inserts a new drone. CreatedAt/UpdatedAt are set here.
// A serial number collision is reported as apperr.KindDuplicateKey.
func (r *DroneRepository) Create(ctx context.Context, d *models.Drone) (*models.Drone, error) {
	if d == nil {
		return nil, errors.New("drone is nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	now := nowUTC()
	d.CreatedAt, d.UpdatedAt = now, now
	res, err := r.db.ExecContext(ctx, `INSERT INTO drones (serial_number, name, model, status, battery_level, max_flight_time,
	lat, lng, altitude, location_name, location_updated_at, health_status, last_maintenance, owner_id, created_at, updated_at)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.SerialNumber, d.Name, d.Model, string(d.Status), d.BatteryLevel, d.MaxFlightTime,
		d.Location.Latitude, d.Location.Longitude, d.Location.Altitude, d.Location.Name, toMillis(d.Location.LastUpdated),
		string(d.HealthStatus), nullMillis(d.LastMaintenance), d.OwnerID, toMillis(now), toMillis(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.DuplicateKey("drone with serial number %q already exists", d.SerialNumber)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (r *DroneRepository) GetByID(ctx context.Context, id int64) (*models.Drone, error) {
	return r.getOne(ctx, `SELECT `+droneColumns+` FROM drones WHERE id = ?`, id)
}

func (r *DroneRepository) GetBySerial(ctx context.Context, serial string) (*models.Drone, error) {
	return r.getOne(ctx, `SELECT `+droneColumns+` FROM drones WHERE serial_number = ?`, serial)
}

func (r *DroneRepository) getOne(ctx context.Context, query string, arg any) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	d, err := scanDrone(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// Find returns drones matching f, newest first.
func (r *DroneRepository) Find(ctx context.Context, f DroneFilter) ([]models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if f.OwnerID != nil {
		where = append(where, "owner_id = ?")
		args = append(args, *f.OwnerID)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	query := `SELECT ` + droneColumns + ` FROM drones`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Drone{}
	for rows.Next() {
		d, err := scanDrone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Update validates and writes every mutable field of d.
func (r *DroneRepository) Update(ctx context.Context, d *models.Drone) error {
	if d == nil {
		return errors.New("drone is nil")
	}
	if err := d.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	d.UpdatedAt = nowUTC()
	res, err := r.db.ExecContext(ctx, `UPDATE drones SET serial_number = ?, name = ?, model = ?, status = ?, battery_level = ?,
	max_flight_time = ?, lat = ?, lng = ?, altitude = ?, location_name = ?, location_updated_at = ?, health_status = ?,
	last_maintenance = ?, updated_at = ? WHERE id = ?`,
		d.SerialNumber, d.Name, d.Model, string(d.Status), d.BatteryLevel, d.MaxFlightTime,
		d.Location.Latitude, d.Location.Longitude, d.Location.Altitude, d.Location.Name, toMillis(d.Location.LastUpdated),
		string(d.HealthStatus), nullMillis(d.LastMaintenance), toMillis(d.UpdatedAt), d.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.DuplicateKey("drone with serial number %q already exists", d.SerialNumber)
		}
		return err
	}
	return requireAffected(res, "drone", d.ID)
}

func (r *DroneRepository) UpdateStatus(ctx context.Context, id int64, status models.DroneStatus) error {
	if !status.Valid() {
		return apperr.Validation("invalid drone status %q", status)
	}
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drones SET status = ?, updated_at = ? WHERE id = ?`, string(status), toMillis(nowUTC()), id)
	if err != nil {
		return err
	}
	return requireAffected(res, "drone", id)
}

func (r *DroneRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM drones WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "drone", id)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
