package databases

// go generate: mockery --name CheckInDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusconnect/campus-events-api/models"
)

const checkInName = "checkins"

// CheckInInsertOutcome is the tagged result of an insert attempt
// against the (user, event) uniqueness invariant. Created is true
// when this caller's record won; otherwise CheckIn carries the record
// that already existed (or the concurrent winner's).
type CheckInInsertOutcome struct {
	Created bool
	CheckIn *models.CheckIn
}

// CheckInDatabase contains the methods to use with the check-in database
type CheckInDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CheckIn, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CheckIn, error)
	InsertFirst(ctx context.Context, checkIn models.CheckIn) (CheckInInsertOutcome, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type checkInDatabase struct {
	db DatabaseHelper
}

// NewCheckInDatabase initializes a new instance of check-in database with the provided db connection
func NewCheckInDatabase(db DatabaseHelper) CheckInDatabase {
	return &checkInDatabase{
		db: db,
	}
}

func (c *checkInDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CheckIn, error) {
	checkIn := &models.CheckIn{}
	err := c.db.Collection(checkInName).FindOne(ctx, filter, opts...).Decode(&checkIn)
	if err != nil {
		return nil, err
	}
	return checkIn, nil
}

func (c *checkInDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CheckIn, error) {
	var checkIns []models.CheckIn
	curr, err := c.db.Collection(checkInName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &checkIns)
	if err != nil {
		return nil, err
	}
	return checkIns, nil
}

// InsertFirst attempts the insert unconditionally and maps a
// duplicate-key failure to the AlreadyExists outcome by re-reading the
// winning record. The unique index on (userId, eventId) is what makes
// two concurrent scans for the same pair safe; a check-then-insert
// sequence in application code cannot be.
func (c *checkInDatabase) InsertFirst(ctx context.Context, checkIn models.CheckIn) (CheckInInsertOutcome, error) {
	_, err := c.db.Collection(checkInName).InsertOne(ctx, checkIn)
	if err == nil {
		return CheckInInsertOutcome{Created: true, CheckIn: &checkIn}, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return CheckInInsertOutcome{}, err
	}

	existing, err := c.FindOne(ctx, bson.M{
		"checkIn.userId":  checkIn.Details.UserID,
		"checkIn.eventId": checkIn.Details.EventID,
	})
	if err != nil {
		return CheckInInsertOutcome{}, err
	}
	return CheckInInsertOutcome{Created: false, CheckIn: existing}, nil
}

func (c *checkInDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(checkInName).CountDocuments(ctx, filter, opts...)
}

// EnsureIndexes creates the unique compound index that enforces the
// at-most-one-check-in-per-(user, event) invariant
func (c *checkInDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(checkInName).CreateIndex(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "checkIn.userId", Value: 1},
			{Key: "checkIn.eventId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}
