package databases

// go generate: mockery --name RSVPDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusconnect/campus-events-api/models"
)

const rsvpName = "rsvps"

// RSVPDatabase contains the methods to use with the rsvp database
type RSVPDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.RSVP, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.RSVP, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type rsvpDatabase struct {
	db DatabaseHelper
}

// NewRSVPDatabase initializes a new instance of rsvp database with the provided db connection
func NewRSVPDatabase(db DatabaseHelper) RSVPDatabase {
	return &rsvpDatabase{
		db: db,
	}
}

func (c *rsvpDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.RSVP, error) {
	rsvp := &models.RSVP{}
	err := c.db.Collection(rsvpName).FindOne(ctx, filter, opts...).Decode(&rsvp)
	if err != nil {
		return nil, err
	}
	return rsvp, nil
}

func (c *rsvpDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.RSVP, error) {
	var rsvps []models.RSVP
	curr, err := c.db.Collection(rsvpName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &rsvps)
	if err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (c *rsvpDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(rsvpName).InsertOne(ctx, document, opts...)
	return res, err
}

func (c *rsvpDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(rsvpName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *rsvpDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(rsvpName).CountDocuments(ctx, filter, opts...)
}

// EnsureIndexes creates the unique compound index guaranteeing one
// rsvp per (user, event) pair
func (c *rsvpDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(rsvpName).CreateIndex(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "rsvp.userId", Value: 1},
			{Key: "rsvp.eventId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}
