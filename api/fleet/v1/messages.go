// Package fleetv1 holds the wire types and service descriptor of the
// fleethq.v1.FleetService gRPC API.
package fleetv1

import (
	"time"

	"fleetHQ/models"
)

// Drone requests

type CreateDroneRequest struct {
	SerialNumber    string              `json:"serialNumber"`
	Name            string              `json:"name"`
	Model           string              `json:"model"`
	Status          models.DroneStatus  `json:"status,omitempty"`
	BatteryLevel    *int                `json:"batteryLevel,omitempty"`
	MaxFlightTime   int                 `json:"maxFlightTime"`
	Location        *models.Location    `json:"location,omitempty"`
	HealthStatus    models.HealthStatus `json:"healthStatus,omitempty"`
	LastMaintenance *time.Time          `json:"lastMaintenance,omitempty"`
}

type ListDronesRequest struct{}

// ListAvailableDronesRequest asks for drones free in [StartDateTime, EndDateTime).
type ListAvailableDronesRequest struct {
	StartDateTime *time.Time `json:"startDateTime,omitempty"`
	EndDateTime   *time.Time `json:"endDateTime,omitempty"`
}

type ListDronesResponse struct {
	Drones []models.Drone `json:"drones"`
}

type GetDroneRequest struct {
	ID int64 `json:"id"`
}

// UpdateDroneRequest changes the non-nil fields of drone ID.
type UpdateDroneRequest struct {
	ID              int64                `json:"id"`
	SerialNumber    *string              `json:"serialNumber,omitempty"`
	Name            *string              `json:"name,omitempty"`
	Model           *string              `json:"model,omitempty"`
	Status          *models.DroneStatus  `json:"status,omitempty"`
	BatteryLevel    *int                 `json:"batteryLevel,omitempty"`
	MaxFlightTime   *int                 `json:"maxFlightTime,omitempty"`
	Location        *models.Location     `json:"location,omitempty"`
	HealthStatus    *models.HealthStatus `json:"healthStatus,omitempty"`
	LastMaintenance *time.Time           `json:"lastMaintenance,omitempty"`
}

type DroneResponse struct {
	Drone *models.Drone `json:"drone"`
}

// Mission requests

// FlightParameters is models.FlightParameters with an optional overlap so the
// default can apply.
type FlightParameters struct {
	Altitude float64              `json:"altitude"`
	Speed    float64              `json:"speed"`
	Pattern  models.FlightPattern `json:"pattern,omitempty"`
	Overlap  *float64             `json:"overlap,omitempty"`
}

type CreateMissionRequest struct {
	Name             string              `json:"name"`
	Description      string              `json:"description,omitempty"`
	DroneID          int64               `json:"droneId"`
	SurveyArea       []models.Coordinate `json:"surveyArea"`
	FlightParameters FlightParameters    `json:"flightParameters"`
	Schedule         models.Schedule     `json:"schedule"`
}

type ListMissionsRequest struct{}

type ListMissionsResponse struct {
	Missions []models.MissionView `json:"missions"`
}

type GetMissionRequest struct {
	ID int64 `json:"id"`
}

// UpdateMissionRequest changes the non-nil fields of mission ID.
type UpdateMissionRequest struct {
	ID               int64                 `json:"id"`
	Name             *string               `json:"name,omitempty"`
	Description      *string               `json:"description,omitempty"`
	DroneID          *int64                `json:"droneId,omitempty"`
	Status           *models.MissionStatus `json:"status,omitempty"`
	SurveyArea       []models.Coordinate   `json:"surveyArea,omitempty"`
	FlightParameters *FlightParameters     `json:"flightParameters,omitempty"`
	Schedule         *models.Schedule      `json:"schedule,omitempty"`
}

type MissionResponse struct {
	Mission *models.MissionView `json:"mission"`
}

// Shared

type DeleteRequest struct {
	ID int64 `json:"id"`
}

type DeleteResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
