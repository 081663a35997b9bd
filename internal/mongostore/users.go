package mongostore

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleetHQ/internal/apperr"
	"fleetHQ/models"
)

type userRepo struct {
	s    *Store
	coll *mongo.Collection
}

// Create inserts a user. Role defaults to operator.
func (r *userRepo) Create(ctx context.Context, username string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if role == "" {
		role = models.RoleOperator
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role %q", role)
	}
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()

	id, err := r.s.nextID(ctx, usersColl)
	if err != nil {
		return nil, err
	}
	if _, err := r.coll.InsertOne(ctx, userDoc{ID: id, Username: username, Role: string(role)}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.DuplicateKey("user %q already exists", username)
		}
		return nil, err
	}
	return &models.User{ID: id, Username: username, Role: role}, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, bson.M{"username": username})
}

func (r *userRepo) getOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := r.s.opCtx(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit)).SetSkip(int64(offset))
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.model())
	}
	return out, nil
}

// UpdateRole sets the role for the given username.
func (r *userRepo) UpdateRole(ctx context.Context, username string, role models.Role) error {
	if !role.Valid() {
		return apperr.Validation("invalid role %q", role)
	}
	ctx, cancel := r.s.opCtx(ctx, readTimeout)
	defer cancel()
	res, err := r.coll.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": bson.M{"role": string(role)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("user %q not found", username)
	}
	return nil
}
