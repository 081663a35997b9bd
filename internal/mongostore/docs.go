package mongostore

import (
	"time"

	"fleetHQ/models"
)

type locationDoc struct {
	Latitude    float64   `bson:"latitude"`
	Longitude   float64   `bson:"longitude"`
	Altitude    float64   `bson:"altitude"`
	Name        string    `bson:"name,omitempty"`
	LastUpdated time.Time `bson:"lastUpdated"`
}

type droneDoc struct {
	ID              int64       `bson:"_id"`
	SerialNumber    string      `bson:"serialNumber"`
	Name            string      `bson:"name"`
	Model           string      `bson:"model"`
	Status          string      `bson:"status"`
	BatteryLevel    int         `bson:"batteryLevel"`
	MaxFlightTime   int         `bson:"maxFlightTime"`
	Location        locationDoc `bson:"currentLocation"`
	HealthStatus    string      `bson:"healthStatus"`
	LastMaintenance *time.Time  `bson:"lastMaintenance,omitempty"`
	OwnerID         int64       `bson:"ownerId"`
	CreatedAt       time.Time   `bson:"createdAt"`
	UpdatedAt       time.Time   `bson:"updatedAt"`
}

func toDroneDoc(d *models.Drone) droneDoc {
	return droneDoc{
		ID:            d.ID,
		SerialNumber:  d.SerialNumber,
		Name:          d.Name,
		Model:         d.Model,
		Status:        string(d.Status),
		BatteryLevel:  d.BatteryLevel,
		MaxFlightTime: d.MaxFlightTime,
		Location: locationDoc{
			Latitude:    d.Location.Latitude,
			Longitude:   d.Location.Longitude,
			Altitude:    d.Location.Altitude,
			Name:        d.Location.Name,
			LastUpdated: d.Location.LastUpdated,
		},
		HealthStatus:    string(d.HealthStatus),
		LastMaintenance: d.LastMaintenance,
		OwnerID:         d.OwnerID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (doc droneDoc) model() models.Drone {
	d := models.Drone{
		ID:            doc.ID,
		SerialNumber:  doc.SerialNumber,
		Name:          doc.Name,
		Model:         doc.Model,
		Status:        models.DroneStatus(doc.Status),
		BatteryLevel:  doc.BatteryLevel,
		MaxFlightTime: doc.MaxFlightTime,
		Location: models.Location{
			Latitude:    doc.Location.Latitude,
			Longitude:   doc.Location.Longitude,
			Altitude:    doc.Location.Altitude,
			Name:        doc.Location.Name,
			LastUpdated: doc.Location.LastUpdated.UTC(),
		},
		HealthStatus: models.HealthStatus(doc.HealthStatus),
		OwnerID:      doc.OwnerID,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}
	if doc.LastMaintenance != nil {
		t := doc.LastMaintenance.UTC()
		d.LastMaintenance = &t
	}
	return d
}

type coordinateDoc struct {
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
}

type recurrenceDoc struct {
	Frequency string    `bson:"frequency"`
	Interval  int       `bson:"interval"`
	EndDate   time.Time `bson:"endDate"`
}

type missionDoc struct {
	ID          int64           `bson:"_id"`
	Name        string          `bson:"name"`
	Description string          `bson:"description"`
	OwnerID     int64           `bson:"ownerId"`
	DroneID     int64           `bson:"droneId"`
	Status      string          `bson:"status"`
	SurveyArea  []coordinateDoc `bson:"surveyArea"`
	Flight      struct {
		Altitude float64 `bson:"altitude"`
		Speed    float64 `bson:"speed"`
		Pattern  string  `bson:"pattern"`
		Overlap  float64 `bson:"overlap"`
	} `bson:"flightParameters"`
	ScheduleType string         `bson:"scheduleType"`
	DateTime     time.Time      `bson:"dateTime"`
	Recurrence   *recurrenceDoc `bson:"recurrence,omitempty"`
	CreatedAt    time.Time      `bson:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt"`
}

func toMissionDoc(m *models.Mission) missionDoc {
	doc := missionDoc{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		OwnerID:      m.OwnerID,
		DroneID:      m.DroneID,
		Status:       string(m.Status),
		ScheduleType: string(m.Schedule.Type),
		DateTime:     m.Schedule.DateTime,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	doc.SurveyArea = make([]coordinateDoc, 0, len(m.SurveyArea))
	for _, c := range m.SurveyArea {
		doc.SurveyArea = append(doc.SurveyArea, coordinateDoc{Latitude: c.Latitude, Longitude: c.Longitude})
	}
	doc.Flight.Altitude = m.FlightParameters.Altitude
	doc.Flight.Speed = m.FlightParameters.Speed
	doc.Flight.Pattern = string(m.FlightParameters.Pattern)
	doc.Flight.Overlap = m.FlightParameters.Overlap
	if r := m.Schedule.Recurrence; r != nil {
		doc.Recurrence = &recurrenceDoc{Frequency: string(r.Frequency), Interval: r.Interval, EndDate: r.EndDate}
	}
	return doc
}

func (doc missionDoc) model() models.Mission {
	m := models.Mission{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		OwnerID:     doc.OwnerID,
		DroneID:     doc.DroneID,
		Status:      models.MissionStatus(doc.Status),
		FlightParameters: models.FlightParameters{
			Altitude: doc.Flight.Altitude,
			Speed:    doc.Flight.Speed,
			Pattern:  models.FlightPattern(doc.Flight.Pattern),
			Overlap:  doc.Flight.Overlap,
		},
		Schedule: models.Schedule{
			Type:     models.ScheduleType(doc.ScheduleType),
			DateTime: doc.DateTime.UTC(),
		},
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
	m.SurveyArea = make([]models.Coordinate, 0, len(doc.SurveyArea))
	for _, c := range doc.SurveyArea {
		m.SurveyArea = append(m.SurveyArea, models.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude})
	}
	if r := doc.Recurrence; r != nil {
		m.Schedule.Recurrence = &models.Recurrence{Frequency: models.Frequency(r.Frequency), Interval: r.Interval, EndDate: r.EndDate.UTC()}
	}
	return m
}

type userDoc struct {
	ID       int64  `bson:"_id"`
	Username string `bson:"username"`
	Role     string `bson:"role"`
}

func (doc userDoc) model() models.User {
	return models.User{ID: doc.ID, Username: doc.Username, Role: models.Role(doc.Role)}
}
