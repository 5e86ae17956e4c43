package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// RSVP status values
const (
	RSVPStatusGoing    = "going"
	RSVPStatusMaybe    = "maybe"
	RSVPStatusNotGoing = "not_going"
)

// RSVP holds the structure for the rsvps collection in mongo
type RSVP struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details RSVPDetails        `json:"rsvp" bson:"rsvp"`
	Version int32              `json:"__v" bson:"__v"`
}

// RSVPDetails holds the inner rsvp structure as defined in the rsvps
// collection in mongo. Attended flips to true when a check-in lands
// for the same (user, event) pair; Status keeps the attendee's stated
// intent and is never changed by check-in.
type RSVPDetails struct {
	UserID    string             `json:"userId" bson:"userId"`
	EventID   string             `json:"eventId" bson:"eventId"`
	Status    string             `json:"status" bson:"status"`
	Attended  bool               `json:"attended" bson:"attended"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
