package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/campusconnect/campus-events-api/api"
	"github.com/campusconnect/campus-events-api/config"
	"github.com/campusconnect/campus-events-api/databases"
	"github.com/campusconnect/campus-events-api/models"
	templates "github.com/campusconnect/campus-events-api/templates/html"
)

// RSVP exported for testing purposes
type RSVP struct {
	DB  databases.RSVPDatabase
	EDB databases.EventDatabase
	UDB databases.UserDatabase
}

type rsvpRequest struct {
	UserID  string `json:"userId"`
	EventID string `json:"eventId"`
	Status  string `json:"status"`
}

func validRSVPStatus(status string) bool {
	switch status {
	case models.RSVPStatusGoing, models.RSVPStatusMaybe, models.RSVPStatusNotGoing:
		return true
	}
	return false
}

// CreateRSVPHandler records or updates an attendee's stated intent for
// an event. A first rsvp bumps the event's counter; a status change
// does not. The attended flag is owned by check-in and never written
// here.
func (h RSVP) CreateRSVPHandler(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.UserID == "" || req.EventID == "" {
		config.ErrorStatus("userId and eventId are required", http.StatusBadRequest, w, fmt.Errorf("missing userId or eventId"))
		return
	}
	if !validRSVPStatus(req.Status) {
		config.ErrorStatus("invalid rsvp status", http.StatusBadRequest, w, fmt.Errorf("status must be going, maybe or not_going"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	eID, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	event, err := h.EDB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get event by ID", http.StatusNotFound, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	rsvp := models.RSVP{
		ID: primitive.NewObjectID(),
		Details: models.RSVPDetails{
			UserID:    req.UserID,
			EventID:   req.EventID,
			Status:    req.Status,
			Attended:  false,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	pairFilter := bson.M{"rsvp.userId": req.UserID, "rsvp.eventId": req.EventID}

	_, err = h.DB.InsertOne(ctx, rsvp)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("failed to create rsvp", http.StatusInternalServerError, w, err)
			return
		}

		// Existing rsvp for the pair: just update the stated intent.
		err = h.DB.UpdateOne(ctx, pairFilter, bson.M{
			"$set": bson.M{"rsvp.status": req.Status, "rsvp.updatedAt": now},
		})
		if err != nil {
			config.ErrorStatus("failed to update rsvp", http.StatusInternalServerError, w, err)
			return
		}
		existing, err := h.DB.FindOne(ctx, pairFilter)
		if err != nil {
			config.ErrorStatus("failed to get rsvp", http.StatusInternalServerError, w, err)
			return
		}

		b, err := json.Marshal(existing)
		if err != nil {
			config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	// Fresh rsvp carries the counter increment.
	if err := h.EDB.IncrementRSVPCount(ctx, eID, 1); err != nil {
		zap.S().Warnw("failed to increment rsvp count",
			"eventId", req.EventID,
			"error", err)
	}

	h.sendRSVPConfirmation(ctx, req.UserID, event)

	b, err := json.Marshal(rsvp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// RSVPsByEventIDHandler returns all rsvps for an event
func (h RSVP) RSVPsByEventIDHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["event_id"]

	zap.S().Debugf("event_id: %v", eventID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := h.DB.Find(ctx, bson.M{"rsvp.eventId": eventID})
	if err != nil {
		config.ErrorStatus("failed to get rsvps", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.RSVP{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (h RSVP) sendRSVPConfirmation(ctx context.Context, userID string, event *models.Event) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return
	}
	user, err := h.UDB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		return
	}

	from := mail.NewEmail("CampusConnect", "no-reply@campusconnect.events")
	subject := "You're on the list: " + event.Details.Name
	to := mail.NewEmail(user.Details.Name, user.Details.Email)
	plain := fmt.Sprintf("Your RSVP for %s is confirmed.\nWhere: %s\nSee you there!",
		event.Details.Name, event.Details.Location)
	html := templates.RenderGenericEmail(subject, plain)
	msg := mail.NewSingleEmail(from, subject, to, plain, html)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	if _, err := client.Send(msg); err != nil {
		zap.S().Warnw("failed to send rsvp confirmation email",
			"email", user.Details.Email,
			"error", err)
	}
}
