package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleetHQ/internal/apperr"
	"fleetHQ/models"
	"fleetHQ/repository"
)

type droneRepo struct {
	s    *Store
	coll *mongo.Collection
}

func (r *droneRepo) Create(ctx context.Context, d *models.Drone) (*models.Drone, error) {
	if d == nil {
		return nil, errors.New("drone is nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()

	id, err := r.s.nextID(ctx, dronesColl)
	if err != nil {
		return nil, err
	}
	now := nowUTC()
	d.ID, d.CreatedAt, d.UpdatedAt = id, now, now
	if _, err := r.coll.InsertOne(ctx, toDroneDoc(d)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.DuplicateKey("drone with serial number %q already exists", d.SerialNumber)
		}
		return nil, err
	}
	return d, nil
}

func (r *droneRepo) GetByID(ctx context.Context, id int64) (*models.Drone, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *droneRepo) GetBySerial(ctx context.Context, serial string) (*models.Drone, error) {
	return r.getOne(ctx, bson.M{"serialNumber": serial})
}

func (r *droneRepo) getOne(ctx context.Context, filter bson.M) (*models.Drone, error) {
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()
	var doc droneDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	d := doc.model()
	return &d, nil
}

// Find returns drones matching f, newest first.
func (r *droneRepo) Find(ctx context.Context, f repository.DroneFilter) ([]models.Drone, error) {
	ctx, cancel := r.s.opCtx(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if f.OwnerID != nil {
		filter["ownerId"] = *f.OwnerID
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []droneDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Drone, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.model())
	}
	return out, nil
}

func (r *droneRepo) Update(ctx context.Context, d *models.Drone) error {
	if d == nil {
		return errors.New("drone is nil")
	}
	if err := d.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()

	d.UpdatedAt = nowUTC()
	doc := toDroneDoc(d)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": d.ID}, bson.M{"$set": bson.M{
		"serialNumber":    doc.SerialNumber,
		"name":            doc.Name,
		"model":           doc.Model,
		"status":          doc.Status,
		"batteryLevel":    doc.BatteryLevel,
		"maxFlightTime":   doc.MaxFlightTime,
		"currentLocation": doc.Location,
		"healthStatus":    doc.HealthStatus,
		"lastMaintenance": doc.LastMaintenance,
		"updatedAt":       doc.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.DuplicateKey("drone with serial number %q already exists", d.SerialNumber)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("drone %d not found", d.ID)
	}
	return nil
}

func (r *droneRepo) UpdateStatus(ctx context.Context, id int64, status models.DroneStatus) error {
	if !status.Valid() {
		return apperr.Validation("invalid drone status %q", status)
	}
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": string(status), "updatedAt": nowUTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("drone %d not found", id)
	}
	return nil
}

func (r *droneRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("drone %d not found", id)
	}
	return nil
}
