package models

import (
	"strings"
	"time"

	"fleetHQ/internal/apperr"
)

// MissionStatus represents the lifecycle state of a mission.
type MissionStatus string

const (
	MissionStatusDraft      MissionStatus = "draft"
	MissionStatusScheduled  MissionStatus = "scheduled"
	MissionStatusInProgress MissionStatus = "in-progress"
	MissionStatusCompleted  MissionStatus = "completed"
	MissionStatusCancelled  MissionStatus = "cancelled"
	MissionStatusAborted    MissionStatus = "aborted"
)

func (s MissionStatus) Valid() bool {
	switch s {
	case MissionStatusDraft, MissionStatusScheduled, MissionStatusInProgress,
		MissionStatusCompleted, MissionStatusCancelled, MissionStatusAborted:
		return true
	}
	return false
}

// Active reports whether a mission in this status holds a booking on its drone.
func (s MissionStatus) Active() bool {
	return s == MissionStatusScheduled || s == MissionStatusInProgress
}

// ActiveMissionStatuses are the statuses that occupy a drone's schedule.
var ActiveMissionStatuses = []MissionStatus{MissionStatusScheduled, MissionStatusInProgress}

type FlightPattern string

const (
	PatternGrid       FlightPattern = "grid"
	PatternPerimeter  FlightPattern = "perimeter"
	PatternCrosshatch FlightPattern = "crosshatch"
)

type ScheduleType string

const (
	ScheduleOneTime   ScheduleType = "oneTime"
	ScheduleRecurring ScheduleType = "recurring"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

const DefaultOverlap = 70

// Coordinate is a survey area vertex in WGS84 degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type FlightParameters struct {
	Altitude float64       `json:"altitude"`
	Speed    float64       `json:"speed"`
	Pattern  FlightPattern `json:"pattern"`
	Overlap  float64       `json:"overlap"`
}

// Recurrence describes how a recurring mission repeats. Occurrences are
// never materialised; the descriptor is stored as given.
type Recurrence struct {
	Frequency Frequency `json:"frequency"`
	Interval  int       `json:"interval"`
	EndDate   time.Time `json:"endDate"`
}

type Schedule struct {
	Type       ScheduleType `json:"type"`
	DateTime   time.Time    `json:"dateTime"`
	Recurrence *Recurrence  `json:"recurrence,omitempty"`
}

// Mission is a survey flight booked on one drone.
type Mission struct {
	ID               int64            `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	Description      string           `db:"description" json:"description"`
	OwnerID          int64            `db:"owner_id" json:"ownerId"`
	DroneID          int64            `db:"drone_id" json:"droneId"`
	Status           MissionStatus    `db:"status" json:"status"`
	SurveyArea       []Coordinate     `db:"survey_area" json:"surveyArea"`
	FlightParameters FlightParameters `json:"flightParameters"`
	Schedule         Schedule         `json:"schedule"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// MissionView is a mission joined with the fields of its drone and owner
// that listings display.
type MissionView struct {
	Mission
	Drone *DroneSummary `json:"drone,omitempty"`
	Owner *UserSummary  `json:"owner,omitempty"`
	// Derived from SurveyArea; zero when the area cannot be measured.
	SurveyAreaM2     float64 `json:"surveyAreaM2"`
	SurveyPerimeterM float64 `json:"surveyPerimeterM"`
}

type DroneSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
}

type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ApplyDefaults fills defaults, normalises times to UTC and closes the
// survey ring if the caller left the closing vertex off.
func (m *Mission) ApplyDefaults() {
	if m.FlightParameters.Pattern == "" {
		m.FlightParameters.Pattern = PatternGrid
	}
	if m.Schedule.Type == "" {
		m.Schedule.Type = ScheduleOneTime
	}
	m.SurveyArea = CloseRing(m.SurveyArea)
	// stores keep millisecond precision; exact-slot comparisons rely on it
	m.Schedule.DateTime = m.Schedule.DateTime.UTC().Truncate(time.Millisecond)
	if r := m.Schedule.Recurrence; r != nil {
		r.EndDate = r.EndDate.UTC().Truncate(time.Millisecond)
	}
}

// CloseRing appends the first vertex when the ring is open.
func CloseRing(ring []Coordinate) []Coordinate {
	if len(ring) == 0 {
		return ring
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Validate checks field ranges, enum membership and required fields.
func (m *Mission) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return apperr.Validation("name is required")
	}
	if m.OwnerID == 0 {
		return apperr.Validation("owner is required")
	}
	if m.DroneID == 0 {
		return apperr.Validation("drone is required")
	}
	if !m.Status.Valid() {
		return apperr.Validation("invalid mission status %q", m.Status)
	}
	if err := validateSurveyArea(m.SurveyArea); err != nil {
		return err
	}
	if err := m.FlightParameters.Validate(); err != nil {
		return err
	}
	return m.Schedule.Validate()
}

func validateSurveyArea(ring []Coordinate) error {
	distinct := map[Coordinate]struct{}{}
	for _, c := range ring {
		if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
			return apperr.Validation("survey area vertex out of range: %v,%v", c.Latitude, c.Longitude)
		}
		distinct[c] = struct{}{}
	}
	if len(distinct) < 3 {
		return apperr.Validation("survey area needs at least 3 distinct vertices")
	}
	if ring[0] != ring[len(ring)-1] {
		return apperr.Validation("survey area must be a closed ring")
	}
	return nil
}

func (p FlightParameters) Validate() error {
	switch {
	case p.Altitude < 10 || p.Altitude > 500:
		return apperr.Validation("altitude must be between 10 and 500")
	case p.Speed < 1 || p.Speed > 20:
		return apperr.Validation("speed must be between 1 and 20")
	case p.Overlap < 0 || p.Overlap > 90:
		return apperr.Validation("overlap must be between 0 and 90")
	}
	switch p.Pattern {
	case PatternGrid, PatternPerimeter, PatternCrosshatch:
		return nil
	}
	return apperr.Validation("invalid flight pattern %q", p.Pattern)
}

func (s Schedule) Validate() error {
	if s.DateTime.IsZero() {
		return apperr.Validation("schedule dateTime is required")
	}
	switch s.Type {
	case ScheduleOneTime:
		if s.Recurrence != nil {
			return apperr.Validation("recurrence is only allowed for recurring schedules")
		}
		return nil
	case ScheduleRecurring:
		r := s.Recurrence
		if r == nil {
			return apperr.Validation("recurring schedule requires a recurrence")
		}
		switch r.Frequency {
		case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		default:
			return apperr.Validation("invalid recurrence frequency %q", r.Frequency)
		}
		if r.Interval < 1 || r.Interval > 30 {
			return apperr.Validation("recurrence interval must be between 1 and 30")
		}
		if r.EndDate.IsZero() {
			return apperr.Validation("recurrence endDate is required")
		}
		if r.EndDate.Before(s.DateTime) {
			return apperr.Validation("recurrence endDate precedes the schedule dateTime")
		}
		return nil
	}
	return apperr.Validation("invalid schedule type %q", s.Type)
}
