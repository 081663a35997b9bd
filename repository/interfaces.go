package repository

import (
	"context"
	"time"

	"fleetHQ/models"
)

// Lookups return (nil, nil) when the row does not exist. Update and Delete
// report a missing row as apperr.KindNotFound. Writes validate the entity
// before touching storage.

// DroneStore defines operations on Drone entities.
type DroneStore interface {
	Create(ctx context.Context, d *models.Drone) (*models.Drone, error)
	GetByID(ctx context.Context, id int64) (*models.Drone, error)
	GetBySerial(ctx context.Context, serial string) (*models.Drone, error)
	Find(ctx context.Context, f DroneFilter) ([]models.Drone, error)
	Update(ctx context.Context, d *models.Drone) error
	UpdateStatus(ctx context.Context, id int64, status models.DroneStatus) error
	Delete(ctx context.Context, id int64) error
}

// MissionStore defines operations on Mission entities.
type MissionStore interface {
	Create(ctx context.Context, m *models.Mission) (*models.Mission, error)
	GetByID(ctx context.Context, id int64) (*models.Mission, error)
	Find(ctx context.Context, f MissionFilter) ([]models.Mission, error)
	Update(ctx context.Context, m *models.Mission) error
	Delete(ctx context.Context, id int64) error
}

// UserStore defines operations on User entities.
type UserStore interface {
	Create(ctx context.Context, username string, role models.Role) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	UpdateRole(ctx context.Context, username string, role models.Role) error
}

// Store groups the entity stores behind one transactional boundary.
type Store interface {
	Drones() DroneStore
	Missions() MissionStore
	Users() UserStore
	// InTx runs fn against a store bound to one transaction. fn's writes
	// commit together when it returns nil and roll back otherwise.
	// Inside fn, only the store passed to fn may be used.
	InTx(ctx context.Context, fn func(Store) error) error
}

// DroneFilter narrows Find. Zero fields do not filter.
type DroneFilter struct {
	OwnerID  *int64
	Statuses []models.DroneStatus
}

type MissionSort int

const (
	SortCreatedDesc MissionSort = iota
	SortDateTimeAsc
)

// MissionFilter narrows Find. Zero fields do not filter.
type MissionFilter struct {
	OwnerID   *int64
	DroneID   *int64
	Statuses  []models.MissionStatus
	Before    *time.Time // schedule dateTime strictly before
	ExcludeID int64
	Sort      MissionSort
}
