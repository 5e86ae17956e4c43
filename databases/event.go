package databases

// go generate: mockery --name EventDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusconnect/campus-events-api/models"
)

const eventName = "events"

// EventDatabase contains the methods to use with the event database
type EventDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Event, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Event, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	IncrementRSVPCount(ctx context.Context, eventID primitive.ObjectID, delta int32) error
}

type eventDatabase struct {
	db DatabaseHelper
}

// NewEventDatabase initializes a new instance of event database with the provided db connection
func NewEventDatabase(db DatabaseHelper) EventDatabase {
	return &eventDatabase{
		db: db,
	}
}

func (c *eventDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Event, error) {
	event := &models.Event{}
	err := c.db.Collection(eventName).FindOne(ctx, filter, opts...).Decode(&event)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (c *eventDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Event, error) {
	var events []models.Event
	curr, err := c.db.Collection(eventName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (c *eventDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(eventName).InsertOne(ctx, document, opts...)
	return res, err
}

func (c *eventDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(eventName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *eventDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(eventName).DeleteOne(ctx, filter, opts...)
}

func (c *eventDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(eventName).CountDocuments(ctx, filter, opts...)
}

// IncrementRSVPCount bumps the event's rsvp counter atomically at the
// storage layer. Read-modify-write in application code would lose
// updates under concurrent rsvp creation.
func (c *eventDatabase) IncrementRSVPCount(ctx context.Context, eventID primitive.ObjectID, delta int32) error {
	_, err := c.db.Collection(eventName).UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$inc": bson.M{"event.rsvpCount": delta}},
	)
	return err
}
