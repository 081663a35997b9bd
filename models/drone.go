package models

import (
	"strings"
	"time"

	"fleetHQ/internal/apperr"
)

// DroneStatus represents the operational status of a drone.
type DroneStatus string

const (
	DroneStatusAvailable   DroneStatus = "available"
	DroneStatusInMission   DroneStatus = "in-mission"
	DroneStatusMaintenance DroneStatus = "maintenance"
	DroneStatusOffline     DroneStatus = "offline"
)

func (s DroneStatus) Valid() bool {
	switch s {
	case DroneStatusAvailable, DroneStatusInMission, DroneStatusMaintenance, DroneStatusOffline:
		return true
	}
	return false
}

// HealthStatus is the last reported airframe condition.
type HealthStatus string

const (
	HealthExcellent      HealthStatus = "excellent"
	HealthGood           HealthStatus = "good"
	HealthFair           HealthStatus = "fair"
	HealthNeedsAttention HealthStatus = "needs-attention"
	HealthCritical       HealthStatus = "critical"
)

func (h HealthStatus) Valid() bool {
	switch h {
	case HealthExcellent, HealthGood, HealthFair, HealthNeedsAttention, HealthCritical:
		return true
	}
	return false
}

const (
	MinFlightTimeMinutes = 5
	MaxFlightTimeMinutes = 180
	DefaultBatteryLevel  = 100
)

// Location is the last known position of a drone.
type Location struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Altitude    float64   `json:"altitude"`
	Name        string    `json:"name,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Drone is a registered aircraft owned by a user.
// SerialNumber is the unique business key.
type Drone struct {
	ID              int64        `db:"id" json:"id"`
	SerialNumber    string       `db:"serial_number" json:"serialNumber"`
	Name            string       `db:"name" json:"name"`
	Model           string       `db:"model" json:"model"`
	Status          DroneStatus  `db:"status" json:"status"`
	BatteryLevel    int          `db:"battery_level" json:"batteryLevel"`
	MaxFlightTime   int          `db:"max_flight_time" json:"maxFlightTime"`
	Location        Location     `json:"location"`
	HealthStatus    HealthStatus `db:"health_status" json:"healthStatus"`
	LastMaintenance *time.Time   `db:"last_maintenance" json:"lastMaintenance,omitempty"`
	OwnerID         int64        `db:"owner_id" json:"ownerId"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}

// ApplyDefaults fills the registration defaults for fields left empty.
func (d *Drone) ApplyDefaults(now time.Time) {
	if d.Status == "" {
		d.Status = DroneStatusAvailable
	}
	if d.HealthStatus == "" {
		d.HealthStatus = HealthGood
	}
	if d.Location.LastUpdated.IsZero() {
		d.Location.LastUpdated = now
	}
}

// Validate checks field ranges and enum membership.
func (d *Drone) Validate() error {
	switch {
	case strings.TrimSpace(d.SerialNumber) == "":
		return apperr.Validation("serialNumber is required")
	case strings.TrimSpace(d.Name) == "":
		return apperr.Validation("name is required")
	case strings.TrimSpace(d.Model) == "":
		return apperr.Validation("model is required")
	case !d.Status.Valid():
		return apperr.Validation("invalid drone status %q", d.Status)
	case !d.HealthStatus.Valid():
		return apperr.Validation("invalid health status %q", d.HealthStatus)
	case d.BatteryLevel < 0 || d.BatteryLevel > 100:
		return apperr.Validation("batteryLevel must be between 0 and 100")
	case d.MaxFlightTime < MinFlightTimeMinutes || d.MaxFlightTime > MaxFlightTimeMinutes:
		return apperr.Validation("maxFlightTime must be between %d and %d minutes", MinFlightTimeMinutes, MaxFlightTimeMinutes)
	case d.Location.Latitude < -90 || d.Location.Latitude > 90:
		return apperr.Validation("latitude must be between -90 and 90")
	case d.Location.Longitude < -180 || d.Location.Longitude > 180:
		return apperr.Validation("longitude must be between -180 and 180")
	case d.OwnerID == 0:
		return apperr.Validation("owner is required")
	}
	return nil
}
