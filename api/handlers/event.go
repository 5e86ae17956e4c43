package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/campusconnect/campus-events-api/api"
	"github.com/campusconnect/campus-events-api/config"
	"github.com/campusconnect/campus-events-api/databases"
	"github.com/campusconnect/campus-events-api/models"
	"github.com/campusconnect/campus-events-api/qr"
)

// Page holds the current page number for paginated list endpoints
var Page int

func getPage(page int, r *http.Request) int {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || p < 0 {
		return 0
	}
	return p
}

// Event exported for testing purposes
type Event struct {
	DB databases.EventDatabase
}

// EventHandler returns all events
func (e Event) EventHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || Limit <= 0 {
		Limit = 10
	}
	limit64 := int64(Limit)
	Page = getPage(Page, r)
	skip64 := int64(Page * Limit)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().
		SetLimit(limit64).
		SetSkip(skip64).
		SetSort(bson.M{"event.startTime": 1})

	dbResp, err := e.DB.Find(ctx, bson.D{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get events", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.Event{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EventByIDHandler returns an event by ID
func (e Event) EventByIDHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["event_id"]

	zap.S().Debugf("event_id: %v", eventID)

	eID, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get event by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateEventHandler creates a new event
func (e Event) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event.Details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if event.Details.Name == "" {
		config.ErrorStatus("event name is required", http.StatusBadRequest, w, fmt.Errorf("missing event name"))
		return
	}

	event.ID = primitive.NewObjectID()
	now := primitive.NewDateTimeFromTime(time.Now())
	event.Details.CreatedAt = now
	event.Details.UpdatedAt = now
	event.Details.RSVPCount = 0

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := e.DB.InsertOne(ctx, event); err != nil {
		config.ErrorStatus("failed to create event", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Event created successfully",
		"id":      event.ID.Hex(),
		"event":   event,
	})
}

// UpdateEventHandler updates an event's details
func (e Event) UpdateEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["event_id"]

	eID, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existingEvent, err := e.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to find event", http.StatusNotFound, w, err)
		return
	}

	// Merge the partial update over the existing details. RSVPCount is
	// excluded: it moves only through $inc at the storage layer.
	existingDetailsMap := make(map[string]interface{})
	data, _ := json.Marshal(existingEvent.Details)
	json.Unmarshal(data, &existingDetailsMap)

	var updateData map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	delete(updateData, "rsvpCount")

	for key, value := range updateData {
		existingDetailsMap[key] = value
	}
	existingDetailsMap["updatedAt"] = primitive.NewDateTimeFromTime(time.Now())

	updatedDetails := models.EventDetails{}
	data, _ = json.Marshal(existingDetailsMap)
	json.Unmarshal(data, &updatedDetails)

	err = e.DB.UpdateOne(ctx, bson.M{"_id": eID}, bson.M{"$set": bson.M{"event": updatedDetails}})
	if err != nil {
		config.ErrorStatus("failed to update event", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Event updated successfully",
	})
}

// DeleteEventHandler deletes an event by its ID
func (e Event) DeleteEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["event_id"]

	eID, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err = e.DB.DeleteOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to delete event", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Event deleted successfully",
	})
}

// EventQRHandler issues a fresh check-in token for the given attendee
// and event, for the attendee app to render as a QR code
func (e Event) EventQRHandler(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["event_id"]
	userID := r.URL.Query().Get("userId")

	if userID == "" {
		config.ErrorStatus("userId query parameter is required", http.StatusBadRequest, w, fmt.Errorf("missing userId"))
		return
	}

	eID, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := e.DB.FindOne(ctx, bson.M{"_id": eID}); err != nil {
		config.ErrorStatus("failed to get event by ID", http.StatusNotFound, w, err)
		return
	}

	token, err := qr.Encode(userID, eventID)
	if err != nil {
		config.ErrorStatus("failed to encode qr token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"qrToken": token,
	})
}
