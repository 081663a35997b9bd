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

type missionRepo struct {
	s    *Store
	coll *mongo.Collection
}

func (r *missionRepo) Create(ctx context.Context, m *models.Mission) (*models.Mission, error) {
	if m == nil {
		return nil, errors.New("mission is nil")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()

	id, err := r.s.nextID(ctx, missionsColl)
	if err != nil {
		return nil, err
	}
	now := nowUTC()
	m.ID, m.CreatedAt, m.UpdatedAt = id, now, now
	if _, err := r.coll.InsertOne(ctx, toMissionDoc(m)); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *missionRepo) GetByID(ctx context.Context, id int64) (*models.Mission, error) {
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()
	var doc missionDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	m := doc.model()
	return &m, nil
}

// Find mirrors the SQL query: newest first unless schedule order is asked for.
func (r *missionRepo) Find(ctx context.Context, f repository.MissionFilter) ([]models.Mission, error) {
	ctx, cancel := r.s.opCtx(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if f.OwnerID != nil {
		filter["ownerId"] = *f.OwnerID
	}
	if f.DroneID != nil {
		filter["droneId"] = *f.DroneID
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if f.Before != nil {
		filter["dateTime"] = bson.M{"$lt": f.Before.UTC()}
	}
	if f.ExcludeID != 0 {
		filter["_id"] = bson.M{"$ne": f.ExcludeID}
	}

	sort := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	if f.Sort == repository.SortDateTimeAsc {
		sort = bson.D{{Key: "dateTime", Value: 1}, {Key: "_id", Value: 1}}
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []missionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Mission, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.model())
	}
	return out, nil
}

func (r *missionRepo) Update(ctx context.Context, m *models.Mission) error {
	if m == nil {
		return errors.New("mission is nil")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()

	m.UpdatedAt = nowUTC()
	doc := toMissionDoc(m)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": m.ID}, bson.M{"$set": bson.M{
		"name":             doc.Name,
		"description":      doc.Description,
		"droneId":          doc.DroneID,
		"status":           doc.Status,
		"surveyArea":       doc.SurveyArea,
		"flightParameters": doc.Flight,
		"scheduleType":     doc.ScheduleType,
		"dateTime":         doc.DateTime,
		"recurrence":       doc.Recurrence,
		"updatedAt":        doc.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("mission %d not found", m.ID)
	}
	return nil
}

func (r *missionRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("mission %d not found", id)
	}
	return nil
}
