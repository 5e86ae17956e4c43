package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusconnect/campus-events-api/api/handlers"
	"github.com/campusconnect/campus-events-api/databases"
	mocksdb "github.com/campusconnect/campus-events-api/databases/mocks"
	"github.com/campusconnect/campus-events-api/models"
)

func rsvpCreateRequest(t *testing.T, userID, eventID, status string) *http.Request {
	body := fmt.Sprintf(`{"userId": %q, "eventId": %q, "status": %q}`, userID, eventID, status)
	req, err := http.NewRequest("POST", "/api/v1/rsvp", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")
	return req
}

func TestRSVP_CreateRSVPHandlerMissingIDs(t *testing.T) {
	req := rsvpCreateRequest(t, "", "", "going")

	h := handlers.RSVP{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateRSVPHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "userId and eventId are required")
}

func TestRSVP_CreateRSVPHandlerInvalidStatus(t *testing.T) {
	req := rsvpCreateRequest(t, "user-1", primitive.NewObjectID().Hex(), "attending")

	h := handlers.RSVP{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateRSVPHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid rsvp status")
}

func TestRSVP_CreateRSVPHandlerEventNotFound(t *testing.T) {
	eventID := primitive.NewObjectID().Hex()
	req := rsvpCreateRequest(t, "user-1", eventID, "going")

	db := &mocksdb.DatabaseHelper{}
	eventColl := &mocksdb.CollectionHelper{}
	srMiss := &mocksdb.SingleResultHelper{}

	srMiss.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	eventColl.On("FindOne", mock.Anything, mock.Anything).Return(srMiss)
	db.On("Collection", "events").Return(eventColl)

	h := handlers.RSVP{EDB: databases.NewEventDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateRSVPHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get event by ID")
}

func TestRSVP_CreateRSVPHandlerFreshInsertBumpsCounter(t *testing.T) {
	eventID := primitive.NewObjectID().Hex()
	userID := primitive.NewObjectID().Hex()
	req := rsvpCreateRequest(t, userID, eventID, "going")

	db := &mocksdb.DatabaseHelper{}
	eventColl := &mocksdb.CollectionHelper{}
	rsvpColl := &mocksdb.CollectionHelper{}
	userColl := &mocksdb.CollectionHelper{}
	srEvent := &mocksdb.SingleResultHelper{}
	srMiss := &mocksdb.SingleResultHelper{}

	srEvent.On("Decode", mock.Anything).Return(nil)
	srMiss.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)

	eventColl.On("FindOne", mock.Anything, mock.Anything).Return(srEvent)
	eventColl.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)
	rsvpColl.On("InsertOne", mock.Anything, mock.Anything).
		Return(&mocksdb.InsertOneResultHelper{}, nil)
	// confirmation email is skipped when the user record can't be read
	userColl.On("FindOne", mock.Anything, mock.Anything).Return(srMiss)

	db.On("Collection", "events").Return(eventColl)
	db.On("Collection", "rsvps").Return(rsvpColl)
	db.On("Collection", "users").Return(userColl)

	h := handlers.RSVP{
		DB:  databases.NewRSVPDatabase(db),
		EDB: databases.NewEventDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateRSVPHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp models.RSVP
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.Details.UserID)
	assert.Equal(t, models.RSVPStatusGoing, resp.Details.Status)
	assert.False(t, resp.Details.Attended)

	eventColl.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestRSVP_CreateRSVPHandlerDuplicateUpdatesStatusOnly(t *testing.T) {
	eventID := primitive.NewObjectID().Hex()
	userID := primitive.NewObjectID().Hex()
	req := rsvpCreateRequest(t, userID, eventID, "maybe")

	db := &mocksdb.DatabaseHelper{}
	eventColl := &mocksdb.CollectionHelper{}
	rsvpColl := &mocksdb.CollectionHelper{}
	srEvent := &mocksdb.SingleResultHelper{}
	srExisting := &mocksdb.SingleResultHelper{}

	srEvent.On("Decode", mock.Anything).Return(nil)
	srExisting.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.RSVP)
		(*arg).Details.UserID = userID
		(*arg).Details.EventID = eventID
		(*arg).Details.Status = models.RSVPStatusMaybe
		(*arg).Details.Attended = true
	})

	eventColl.On("FindOne", mock.Anything, mock.Anything).Return(srEvent)
	rsvpColl.On("InsertOne", mock.Anything, mock.Anything).Return(nil, duplicateKeyErr())
	rsvpColl.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)
	rsvpColl.On("FindOne", mock.Anything, mock.Anything).Return(srExisting)

	db.On("Collection", "events").Return(eventColl)
	db.On("Collection", "rsvps").Return(rsvpColl)

	h := handlers.RSVP{
		DB:  databases.NewRSVPDatabase(db),
		EDB: databases.NewEventDatabase(db),
	}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateRSVPHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.RSVP
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.RSVPStatusMaybe, resp.Details.Status)
	// the attended flag is owned by check-in and survives the update
	assert.True(t, resp.Details.Attended)

	// a status change never moves the event counter
	eventColl.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestRSVP_RSVPsByEventIDHandlerEmpty(t *testing.T) {
	eventID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/event/"+eventID+"/rsvps", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	rsvpColl := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("All", mock.Anything, mock.Anything).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)
	rsvpColl.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "rsvps").Return(rsvpColl)

	h := handlers.RSVP{DB: databases.NewRSVPDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RSVPsByEventIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}
