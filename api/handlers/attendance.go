package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/campusconnect/campus-events-api/api"
	"github.com/campusconnect/campus-events-api/config"
	"github.com/campusconnect/campus-events-api/databases"
	"github.com/campusconnect/campus-events-api/models"
	"github.com/campusconnect/campus-events-api/qr"
)

// Attendance exported for testing purposes
type Attendance struct {
	CDB  databases.CheckInDatabase
	RDB  databases.RSVPDatabase
	EDB  databases.EventDatabase
	UDB  databases.UserDatabase
	Feed *LiveFeed
}

// writeAttendanceMsg writes the plain {"msg": ...} body the scanner
// app keys its banners off. The message strings are part of the API
// contract; do not reword them.
func writeAttendanceMsg(w http.ResponseWriter, statusCode int, msg string) {
	w.WriteHeader(statusCode)
	b, _ := json.Marshal(models.AttendanceMessage{Msg: msg})
	w.Write(b)
}

func writeAlreadyCheckedIn(w http.ResponseWriter, checkInTime primitive.DateTime) {
	w.WriteHeader(http.StatusBadRequest)
	b, _ := json.Marshal(models.AlreadyCheckedInResponse{
		Msg:         "Already checked in",
		CheckInTime: models.Timestamp(checkInTime),
	})
	w.Write(b)
}

// VerifyCheckInHandler validates a scanned QR token (or an explicit
// user/event pair for manual entry) and records the attendee's
// check-in exactly once. Validation short-circuits on the first
// failure; the duplicate outcome is reported with the original
// check-in time so the scanner can render it as informational.
func (a Attendance) VerifyCheckInHandler(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	userID := req.UserID
	eventID := req.EventID
	var snapshot *models.QRSnapshot

	if req.QRToken != "" {
		token, err := qr.Decode(req.QRToken)
		if err != nil {
			zap.S().Debugw("rejecting malformed qr token", "error", err)
			writeAttendanceMsg(w, http.StatusBadRequest, "Invalid QR code format")
			return
		}

		// Token-derived ids win, but a conflicting explicit event id
		// means the scanner is pointed at the wrong event.
		if req.EventID != "" && token.EventID != req.EventID {
			writeAttendanceMsg(w, http.StatusBadRequest, "QR code does not match this event")
			return
		}
		userID = token.UserID
		eventID = token.EventID
		snapshot = &models.QRSnapshot{
			UserID:    token.UserID,
			EventID:   token.EventID,
			Timestamp: token.Timestamp,
		}

		if userID == "" {
			writeAttendanceMsg(w, http.StatusBadRequest, "User ID is required")
			return
		}
		if eventID == "" {
			writeAttendanceMsg(w, http.StatusBadRequest, "Event ID is required")
			return
		}

		if qr.IsExpired(token, qr.MaxAgeHours) {
			writeAttendanceMsg(w, http.StatusBadRequest, "QR code has expired")
			return
		}
	} else {
		if userID == "" {
			writeAttendanceMsg(w, http.StatusBadRequest, "User ID is required")
			return
		}
		if eventID == "" {
			writeAttendanceMsg(w, http.StatusBadRequest, "Event ID is required")
			return
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// A malformed id can't match any record, so it reads as not-found
	// rather than a validation failure.
	eID, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		writeAttendanceMsg(w, http.StatusNotFound, "Event not found")
		return
	}
	if _, err := a.EDB.FindOne(ctx, bson.M{"_id": eID}); err != nil {
		writeAttendanceMsg(w, http.StatusNotFound, "Event not found")
		return
	}

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		writeAttendanceMsg(w, http.StatusNotFound, "User not found")
		return
	}
	if _, err := a.UDB.FindOne(ctx, bson.M{"_id": uID}); err != nil {
		writeAttendanceMsg(w, http.StatusNotFound, "User not found")
		return
	}

	pairFilter := bson.M{"checkIn.userId": userID, "checkIn.eventId": eventID}
	if existing, err := a.CDB.FindOne(ctx, pairFilter); err == nil {
		writeAlreadyCheckedIn(w, existing.Details.CheckInTime)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	checkIn := models.CheckIn{
		ID: primitive.NewObjectID(),
		Details: models.CheckInDetails{
			UserID:      userID,
			EventID:     eventID,
			CheckInTime: now,
			QRSnapshot:  snapshot,
			CreatedAt:   now,
		},
	}

	// The unique index on (userId, eventId) arbitrates concurrent
	// scans; a losing insert comes back with the winner's record.
	outcome, err := a.CDB.InsertFirst(ctx, checkIn)
	if err != nil {
		zap.S().Errorw("failed to record check-in", "error", err)
		writeAttendanceMsg(w, http.StatusInternalServerError, "Server error during check-in")
		return
	}
	if !outcome.Created {
		writeAlreadyCheckedIn(w, outcome.CheckIn.Details.CheckInTime)
		return
	}

	rsvp, err := databases.SyncRSVPOnCheckIn(ctx, a.RDB, a.EDB, userID, eventID)
	if err != nil {
		zap.S().Errorw("failed to sync rsvp after check-in", "error", err)
		writeAttendanceMsg(w, http.StatusInternalServerError, "Server error during check-in")
		return
	}

	summary := models.CheckInSummary{
		ID:          outcome.CheckIn.ID.Hex(),
		UserID:      userID,
		EventID:     eventID,
		CheckInTime: models.Timestamp(outcome.CheckIn.Details.CheckInTime),
	}

	if a.Feed != nil {
		a.Feed.Broadcast(eventID, summary)
	}

	b, err := json.Marshal(models.VerifyCheckInResponse{
		Msg:     "Checked in successfully",
		CheckIn: summary,
		RSVP: models.RSVPSummary{
			ID:       rsvp.ID.Hex(),
			UserID:   rsvp.Details.UserID,
			EventID:  rsvp.Details.EventID,
			Attended: rsvp.Details.Attended,
		},
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AttendanceStatusHandler reports whether a single attendee has
// checked in to an event and whether they hold an rsvp
func (a Attendance) AttendanceStatusHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	userID := mux.Vars(r)["userId"]

	zap.S().Debugf("eventId: %v, userId: %v", eventID, userID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	resp := models.AttendanceStatusResponse{}

	// A store failure must not read as "not checked in"; only a clean
	// miss does.
	checkIn, err := a.CDB.FindOne(ctx, bson.M{"checkIn.userId": userID, "checkIn.eventId": eventID})
	if err == nil {
		resp.Attended = true
		t := models.Timestamp(checkIn.Details.CheckInTime)
		resp.CheckInTime = &t
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to get check-in", http.StatusInternalServerError, w, err)
		return
	}

	_, err = a.RDB.FindOne(ctx, bson.M{"rsvp.userId": userID, "rsvp.eventId": eventID})
	if err == nil {
		resp.RSVPd = true
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		config.ErrorStatus("failed to get rsvp", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AttendanceStatsHandler aggregates turnout for an event. Totals are
// counted from the rsvp and check-in records at read time rather than
// from the event's denormalized counter.
func (a Attendance) AttendanceStatsHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	totalRSVPs, err := a.RDB.CountDocuments(ctx, bson.M{
		"rsvp.eventId": eventID,
		"rsvp.status":  models.RSVPStatusGoing,
	})
	if err != nil {
		config.ErrorStatus("failed to count rsvps", http.StatusInternalServerError, w, err)
		return
	}

	checkedIn, err := a.CDB.CountDocuments(ctx, bson.M{"checkIn.eventId": eventID})
	if err != nil {
		config.ErrorStatus("failed to count check-ins", http.StatusInternalServerError, w, err)
		return
	}

	resp := models.AttendanceStatsResponse{
		TotalRSVPs: totalRSVPs,
		CheckedIn:  checkedIn,
	}
	if totalRSVPs > 0 {
		resp.AttendanceRate = int(math.Round(float64(checkedIn) / float64(totalRSVPs) * 100))
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
