package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CheckIn holds the structure for the checkins collection in mongo.
// At most one CheckIn may exist per (user, event) pair; the pair is
// covered by a unique compound index and the record is never updated
// after creation.
type CheckIn struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CheckInDetails     `json:"checkIn" bson:"checkIn"`
	Version int32              `json:"__v" bson:"__v"`
}

// CheckInDetails holds the inner check-in structure as defined in the
// checkins collection in mongo
type CheckInDetails struct {
	UserID      string             `json:"userId" bson:"userId"`
	EventID     string             `json:"eventId" bson:"eventId"`
	CheckInTime primitive.DateTime `json:"checkInTime" bson:"checkInTime"`

	// QRSnapshot is the decoded token payload at the time of check-in,
	// retained for audit. Nil when the check-in was recorded without a
	// scanned code (manual entry).
	QRSnapshot *QRSnapshot `json:"qrSnapshot" bson:"qrSnapshot"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// QRSnapshot mirrors the scanned QR payload
type QRSnapshot struct {
	UserID    string `json:"userId" bson:"userId"`
	EventID   string `json:"eventId" bson:"eventId"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}
