package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const schedulerLockName = "schedulerLocks"

// SchedulerLockDatabase provides a mongo-backed lock so background jobs
// run on a single instance at a time
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, instanceID string) error
	EnsureIndexes(ctx context.Context) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock claims the named lock for this instance. The upsert
// only matches an expired lock or one this instance already holds, so
// a duplicate-key failure means another instance has it.
func (c *schedulerLockDatabase) TryAcquireLock(ctx context.Context, name, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"name": name,
		"$or": []bson.M{
			{"owner": instanceID},
			{"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)}},
		},
	}
	update := bson.M{"$set": bson.M{
		"name":      name,
		"owner":     instanceID,
		"expiresAt": primitive.NewDateTimeFromTime(now.Add(ttl)),
	}}
	_, err := c.db.Collection(schedulerLockName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReleaseLock drops the named lock if this instance still owns it
func (c *schedulerLockDatabase) ReleaseLock(ctx context.Context, name, instanceID string) error {
	return c.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{"name": name, "owner": instanceID})
}

// EnsureIndexes creates the unique lock-name index that the acquire
// upsert relies on
func (c *schedulerLockDatabase) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := c.db.Collection(schedulerLockName).CreateIndex(ctx, model)
	return err
}
