// Package mongostore implements repository.Store on MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleetHQ/repository"
)

const (
	readTimeout  = 3 * time.Second
	queryTimeout = 5 * time.Second

	dronesColl   = "drones"
	missionsColl = "missions"
	usersColl    = "users"
	countersColl = "counters"
)

var nowUTC = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// Store is the MongoDB-backed repository.Store. Documents carry int64 ids
// drawn from a counters collection so both backends expose the same ids.
//
// InTx serializes transactional work in this process. With Transactions set
// (replica set required) the work also runs in a multi-document transaction
// and rolls back on error; without it, writes already made stay applied.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	txs    bool
	mu     *sync.Mutex
	sess   mongo.Session // non-nil inside InTx

	drones   *droneRepo
	missions *missionRepo
	users    *userRepo
}

var _ repository.Store = (*Store)(nil)

// Connect dials uri, pings the server and ensures the indexes exist.
func Connect(ctx context.Context, uri, dbName string, transactions bool) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := newStore(client, client.Database(dbName), transactions, &sync.Mutex{}, nil)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func newStore(client *mongo.Client, db *mongo.Database, txs bool, mu *sync.Mutex, sess mongo.Session) *Store {
	s := &Store{client: client, db: db, txs: txs, mu: mu, sess: sess}
	s.drones = &droneRepo{s: s, coll: db.Collection(dronesColl)}
	s.missions = &missionRepo{s: s, coll: db.Collection(missionsColl)}
	s.users = &userRepo{s: s, coll: db.Collection(usersColl)}
	return s
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the database. Tests use it for cleanup.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *Store) Drones() repository.DroneStore     { return s.drones }
func (s *Store) Missions() repository.MissionStore { return s.missions }
func (s *Store) Users() repository.UserStore       { return s.users }

// EnsureIndexes creates the unique and query indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		dronesColl: {
			{Keys: bson.D{{Key: "serialNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "status", Value: 1}}},
		},
		missionsColl: {
			{Keys: bson.D{{Key: "droneId", Value: 1}, {Key: "status", Value: 1}, {Key: "dateTime", Value: 1}}},
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		usersColl: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, idx := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// InTx runs fn against a store bound to one session. Nested calls join it.
func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.sess != nil {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.Background())

	bound := newStore(s.client, s.db, s.txs, s.mu, sess)
	if !s.txs {
		return fn(bound)
	}
	_, err = sess.WithTransaction(ctx, func(mongo.SessionContext) (any, error) {
		return nil, fn(bound)
	})
	return err
}

// opCtx attaches the bound session, if any, to ctx.
func (s *Store) opCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if s.sess != nil {
		ctx = mongo.NewSessionContext(ctx, s.sess)
	}
	return context.WithTimeout(ctx, timeout)
}

// nextID allocates the next id of a collection.
func (s *Store) nextID(ctx context.Context, coll string) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.db.Collection(countersColl).
		FindOneAndUpdate(ctx, bson.M{"_id": coll}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).
		Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", coll, err)
	}
	return out.Seq, nil
}
