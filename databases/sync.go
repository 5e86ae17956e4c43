package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/campusconnect/campus-events-api/models"
)

// SyncRSVPOnCheckIn ensures an rsvp exists and is marked attended for
// the given (user, event) pair. It runs after every first-time
// check-in and from the background reconciler.
//
// If no rsvp exists one is auto-created with status "going" and the
// event's rsvp counter is incremented; if one exists only the attended
// flag is set, preserving the attendee's stated status and without
// touching the counter. The rsvps unique index resolves the race
// between an explicit rsvp and the auto-create: a duplicate-key
// failure falls back to the attended-flag update.
func SyncRSVPOnCheckIn(ctx context.Context, rdb RSVPDatabase, edb EventDatabase, userID, eventID string) (*models.RSVP, error) {
	filter := bson.M{"rsvp.userId": userID, "rsvp.eventId": eventID}
	now := primitive.NewDateTimeFromTime(time.Now())

	existing, err := rdb.FindOne(ctx, filter)
	if err == nil {
		if !existing.Details.Attended {
			err = rdb.UpdateOne(ctx, bson.M{"_id": existing.ID}, bson.M{
				"$set": bson.M{"rsvp.attended": true, "rsvp.updatedAt": now},
			})
			if err != nil {
				return nil, err
			}
			existing.Details.Attended = true
			existing.Details.UpdatedAt = now
		}
		return existing, nil
	}

	// Absent (or unreadable): attempt the auto-create. The unique
	// index keeps a racing explicit rsvp from producing a second
	// record for the pair.
	rsvp := models.RSVP{
		ID: primitive.NewObjectID(),
		Details: models.RSVPDetails{
			UserID:    userID,
			EventID:   eventID,
			Status:    models.RSVPStatusGoing,
			Attended:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	_, err = rdb.InsertOne(ctx, rsvp)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		err = rdb.UpdateOne(ctx, filter, bson.M{
			"$set": bson.M{"rsvp.attended": true, "rsvp.updatedAt": now},
		})
		if err != nil {
			return nil, err
		}
		return rdb.FindOne(ctx, filter)
	}

	// Auto-rsvp is the one attendance path that creates an rsvp, so it
	// carries the counter increment. Stats derive totals by counting
	// rsvp records at read time, so a failed increment only skews the
	// denormalized counter, not the attendance rate.
	eOID, oidErr := primitive.ObjectIDFromHex(eventID)
	if oidErr == nil {
		if incErr := edb.IncrementRSVPCount(ctx, eOID, 1); incErr != nil {
			zap.S().Warnw("failed to increment rsvp count after auto-rsvp",
				"eventId", eventID,
				"error", incErr,
			)
		}
	}
	return &rsvp, nil
}
