package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusconnect/campus-events-api/api/handlers"
	"github.com/campusconnect/campus-events-api/databases"
	mocksdb "github.com/campusconnect/campus-events-api/databases/mocks"
	"github.com/campusconnect/campus-events-api/models"
)

func TestUser_UserHandlerBadHex(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/user/asdf", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "asdf"})
	req.Header.Set("Authorization", "Bearer abc123")

	u := handlers.User{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserHandler).ServeHTTP(rr, req)

	expected, _ := json.Marshal(models.ErrorMessageResponse{
		Response: models.MessageError{
			Message: "failed to get objectID from Hex",
			Error:   "the provided hex string is not a valid ObjectID",
		},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(expected), rr.Body.String())
}

func TestUser_UserHandlerNotFound(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/user/"+userID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	userColl := &mocksdb.CollectionHelper{}
	srMiss := &mocksdb.SingleResultHelper{}

	srMiss.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	userColl.On("FindOne", mock.Anything, mock.Anything).Return(srMiss)
	db.On("Collection", "users").Return(userColl)

	u := handlers.User{DB: databases.NewUserDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get user by ID")
}

func TestUser_UserHandlerSuccess(t *testing.T) {
	userID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/user/"+userID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": userID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	userColl := &mocksdb.CollectionHelper{}
	srUser := &mocksdb.SingleResultHelper{}

	srUser.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = userID
		(*arg).Details.Name = "Jordan Lee"
		(*arg).Details.Email = "jordan@campus.edu"
	})
	userColl.On("FindOne", mock.Anything, mock.Anything).Return(srUser)
	db.On("Collection", "users").Return(userColl)

	u := handlers.User{DB: databases.NewUserDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "jordan@campus.edu")
}

func TestUser_UserCreateHandlerMissingFields(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(`{"name": "Jordan"}`))
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.User{}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "email and password required")
}

func TestUser_UserCreateHandlerDuplicateEmail(t *testing.T) {
	body := `{"name": "Jordan", "email": "Jordan@Campus.edu", "password": "hunter22"}`
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	userColl := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.User)
		*arg = []models.User{{ID: primitive.NewObjectID()}}
	})
	cursor.On("Close", mock.Anything).Return(nil)
	userColl.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "users").Return(userColl)

	u := handlers.User{DB: databases.NewUserDatabase(db)}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "email already registered")
}
