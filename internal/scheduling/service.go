package scheduling

import (
	"time"

	"fleetHQ/internal/events"
	"fleetHQ/models"
	"fleetHQ/repository"
)

// Publisher receives events after the transaction that produced them commits.
type Publisher interface {
	Publish(ev events.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

// Options configure a Service. Zero values select the defaults.
type Options struct {
	MissionDuration time.Duration
	ConflictMode    ConflictMode
	Publisher       Publisher
	Now             func() time.Time
}

// Service implements the drone and mission operations exposed by the transports.
type Service struct {
	store    repository.Store
	guard    Guard
	resolver Resolver
	pub      Publisher
	now      func() time.Time
}

// NewService wires a Service over store.
func NewService(store repository.Store, opts Options) *Service {
	if opts.MissionDuration <= 0 {
		opts.MissionDuration = DefaultMissionDuration
	}
	if !opts.ConflictMode.Valid() {
		opts.ConflictMode = ConflictOverlap
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:    store,
		guard:    Guard{Duration: opts.MissionDuration, Mode: opts.ConflictMode},
		resolver: Resolver{Duration: opts.MissionDuration},
		pub:      opts.Publisher,
		now:      opts.Now,
	}
}

// MissionDuration is the booking length shared by the guard and the resolver.
func (s *Service) MissionDuration() time.Duration { return s.guard.Duration }

func (s *Service) publish(evs []events.Event) {
	for _, ev := range evs {
		s.pub.Publish(ev)
	}
}

// CreateDroneInput carries the fields of a new drone. Nil pointers take defaults.
type CreateDroneInput struct {
	SerialNumber    string
	Name            string
	Model           string
	Status          models.DroneStatus
	BatteryLevel    *int
	MaxFlightTime   int
	Location        *models.Location
	HealthStatus    models.HealthStatus
	LastMaintenance *time.Time
}

// DronePatch lists the fields to change; nil fields are left untouched.
type DronePatch struct {
	SerialNumber    *string
	Name            *string
	Model           *string
	Status          *models.DroneStatus
	BatteryLevel    *int
	MaxFlightTime   *int
	Location        *models.Location
	HealthStatus    *models.HealthStatus
	LastMaintenance *time.Time
}

// FlightParametersInput mirrors models.FlightParameters with an optional overlap.
type FlightParametersInput struct {
	Altitude float64
	Speed    float64
	Pattern  models.FlightPattern
	Overlap  *float64
}

func (in FlightParametersInput) model() models.FlightParameters {
	p := models.FlightParameters{Altitude: in.Altitude, Speed: in.Speed, Pattern: in.Pattern, Overlap: models.DefaultOverlap}
	if in.Overlap != nil {
		p.Overlap = *in.Overlap
	}
	return p
}

// CreateMissionInput carries the fields of a new mission.
type CreateMissionInput struct {
	Name             string
	Description      string
	DroneID          int64
	SurveyArea       []models.Coordinate
	FlightParameters FlightParametersInput
	Schedule         models.Schedule
}

// MissionPatch lists the fields to change; nil fields are left untouched.
type MissionPatch struct {
	Name             *string
	Description      *string
	DroneID          *int64
	Status           *models.MissionStatus
	SurveyArea       []models.Coordinate
	FlightParameters *FlightParametersInput
	Schedule         *models.Schedule
}

// FieldCount returns how many fields the patch sets.
func (p MissionPatch) FieldCount() int {
	n := 0
	for _, set := range []bool{
		p.Name != nil, p.Description != nil, p.DroneID != nil, p.Status != nil,
		p.SurveyArea != nil, p.FlightParameters != nil, p.Schedule != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
