package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Event holds the structure for the events collection in mongo
type Event struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details EventDetails       `json:"event" bson:"event"`
	Version int32              `json:"__v" bson:"__v"`
}

// EventDetails holds the inner event structure as defined in the
// events collection in mongo. RSVPCount is mutated only through $inc
// operations at the storage layer, never recomputed at write time.
type EventDetails struct {
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	Location    string `json:"location" bson:"location"`

	StartTime primitive.DateTime `json:"startTime" bson:"startTime"`
	EndTime   primitive.DateTime `json:"endTime" bson:"endTime"`

	OrganizerID string `json:"organizerId" bson:"organizerId"`
	RSVPCount   int32  `json:"rsvpCount" bson:"rsvpCount"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
